package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client defines the interface for the Firebase REST APIs used by the landing page
type Client interface {
	SignInAnonymously(ctx context.Context) (*Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	CreateDocument(ctx context.Context, idToken, collection, docID string, fields map[string]interface{}) error
}

// Session is an anonymous Firebase Auth session
type Session struct {
	UID          string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Endpoints holds the base URLs of the Firebase REST APIs
type Endpoints struct {
	IdentityToolkit string
	SecureToken     string
	Firestore       string
}

// DefaultEndpoints are the production Google endpoints
var DefaultEndpoints = Endpoints{
	IdentityToolkit: "https://identitytoolkit.googleapis.com/v1",
	SecureToken:     "https://securetoken.googleapis.com/v1",
	Firestore:       "https://firestore.googleapis.com/v1",
}

type clientImpl struct {
	apiKey     string
	projectID  string
	appID      string
	endpoints  Endpoints
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Firebase client
func NewClient(apiKey, projectID, appID string) Client {
	return NewClientWithEndpoints(apiKey, projectID, appID, DefaultEndpoints)
}

// NewClientWithEndpoints creates a Firebase client talking to custom endpoints
// (emulators, test servers)
func NewClientWithEndpoints(apiKey, projectID, appID string, endpoints Endpoints) Client {
	return &clientImpl{
		apiKey:     apiKey,
		projectID:  projectID,
		appID:      appID,
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default().With("component", "firebase"),
	}
}

func (c *clientImpl) SignInAnonymously(ctx context.Context) (*Session, error) {
	signUpURL := fmt.Sprintf("%s/accounts:signUp?key=%s", c.endpoints.IdentityToolkit, url.QueryEscape(c.apiKey))

	var response struct {
		IDToken      string `json:"idToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    string `json:"expiresIn"`
		LocalID      string `json:"localId"`
	}
	payload := map[string]interface{}{"returnSecureToken": true}
	if err := c.postJSON(ctx, signUpURL, "", payload, &response); err != nil {
		return nil, fmt.Errorf("error signing in anonymously: %w", err)
	}

	c.logger.Info("established anonymous identity", "uid", response.LocalID)
	return &Session{
		UID:          response.LocalID,
		IDToken:      response.IDToken,
		RefreshToken: response.RefreshToken,
		ExpiresAt:    expiry(response.ExpiresIn),
	}, nil
}

func (c *clientImpl) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	tokenURL := fmt.Sprintf("%s/token?key=%s", c.endpoints.SecureToken, url.QueryEscape(c.apiKey))

	var response struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
		UserID       string `json:"user_id"`
	}
	payload := map[string]interface{}{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	}
	if err := c.postJSON(ctx, tokenURL, "", payload, &response); err != nil {
		return nil, fmt.Errorf("error refreshing session: %w", err)
	}

	return &Session{
		UID:          response.UserID,
		IDToken:      response.IDToken,
		RefreshToken: response.RefreshToken,
		ExpiresAt:    expiry(response.ExpiresIn),
	}, nil
}

// CreateDocument writes a new document through a commit so the server can
// stamp createdAt with its own clock.
func (c *clientImpl) CreateDocument(ctx context.Context, idToken, collection, docID string, fields map[string]interface{}) error {
	database := fmt.Sprintf("projects/%s/databases/(default)", c.projectID)
	commitURL := fmt.Sprintf("%s/%s/documents:commit?key=%s", c.endpoints.Firestore, database, url.QueryEscape(c.apiKey))

	encoded := make(map[string]interface{}, len(fields))
	for name, v := range fields {
		encoded[name] = encodeValue(v)
	}

	payload := map[string]interface{}{
		"writes": []map[string]interface{}{
			{
				"update": map[string]interface{}{
					"name":   fmt.Sprintf("%s/documents/%s/%s", database, collection, docID),
					"fields": encoded,
				},
				"updateTransforms": []map[string]interface{}{
					{"fieldPath": "createdAt", "setToServerValue": "REQUEST_TIME"},
				},
				"currentDocument": map[string]interface{}{"exists": false},
			},
		},
	}

	if err := c.postJSON(ctx, commitURL, idToken, payload, nil); err != nil {
		return fmt.Errorf("error creating Firestore document: %w", err)
	}

	c.logger.Info("created Firestore document", "collection", collection, "id", docID)
	return nil
}

func (c *clientImpl) postJSON(ctx context.Context, endpoint, idToken string, payload, out interface{}) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error creating payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Add("Content-Type", "application/json")
	if c.appID != "" {
		req.Header.Add("X-Firebase-GMPID", c.appID)
	}
	if idToken != "" {
		req.Header.Add("Authorization", "Bearer "+idToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling Firebase: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}

// APIError is a non-200 answer from a Firebase endpoint
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("error from Firebase API (%d): %s", e.StatusCode, e.Body)
}

// encodeValue converts a Go value into a Firestore REST Value
func encodeValue(v interface{}) map[string]interface{} {
	switch val := v.(type) {
	case nil:
		return map[string]interface{}{"nullValue": nil}
	case string:
		return map[string]interface{}{"stringValue": val}
	case bool:
		return map[string]interface{}{"booleanValue": val}
	case int:
		return map[string]interface{}{"integerValue": strconv.Itoa(val)}
	case int64:
		return map[string]interface{}{"integerValue": strconv.FormatInt(val, 10)}
	case float64:
		return map[string]interface{}{"doubleValue": val}
	case time.Time:
		return map[string]interface{}{"timestampValue": val.UTC().Format(time.RFC3339Nano)}
	default:
		return map[string]interface{}{"stringValue": fmt.Sprint(val)}
	}
}

// expiry turns an "expires in N seconds" string into an absolute time
func expiry(expiresIn string) time.Time {
	seconds, err := strconv.Atoi(expiresIn)
	if err != nil || seconds <= 0 {
		seconds = 3600
	}
	return time.Now().Add(time.Duration(seconds) * time.Second)
}
