package airtable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/app123/Lead%20Inbox", r.URL.EscapedPath())
		assert.Equal(t, "Bearer pat", r.Header.Get("Authorization"))

		var body struct {
			Records []struct {
				Fields map[string]interface{} `json:"fields"`
			} `json:"records"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Records, 1)
		assert.Equal(t, "Ana Lee", body.Records[0].Fields["fullName"])

		w.Write([]byte(`{"records":[{"id":"rec1","createdTime":"2026-10-19T10:00:00.000Z"}]}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("pat", "app123", srv.URL)
	rec, err := client.CreateRecord(context.Background(), "Lead Inbox", map[string]interface{}{"fullName": "Ana Lee"})
	require.NoError(t, err)
	assert.Equal(t, "rec1", rec.ID)
	assert.Equal(t, "2026-10-19T10:00:00.000Z", rec.CreatedTime)
}

func TestCreateRecordAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":{"type":"INVALID_VALUE_FOR_COLUMN"}}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("pat", "app123", srv.URL)
	_, err := client.CreateRecord(context.Background(), "Leads", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_VALUE_FOR_COLUMN")
}
