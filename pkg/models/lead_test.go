package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCandidate() LeadCandidate {
	return LeadCandidate{
		FullName: "Ana Lee",
		Email:    "ana@x.com",
		Phone:    "9998887776",
		Intent:   IntentEnroll,
	}
}

func TestValidateLeadAccepts(t *testing.T) {
	lead, err := ValidateLead(validCandidate())
	require.NoError(t, err)

	assert.Equal(t, LeadSubmission{
		FullName: "Ana Lee",
		Email:    "ana@x.com",
		Phone:    "9998887776",
		Intent:   IntentEnroll,
	}, lead)
}

func TestValidateLeadDefaultsIntentToEnroll(t *testing.T) {
	c := validCandidate()
	c.Intent = ""

	lead, err := ValidateLead(c)
	require.NoError(t, err)
	assert.Equal(t, IntentEnroll, lead.Intent)
}

func TestValidateLeadPhoneIsNotNormalized(t *testing.T) {
	c := validCandidate()
	c.Phone = "+1 (555) x"

	lead, err := ValidateLead(c)
	require.NoError(t, err)
	assert.Equal(t, "+1 (555) x", lead.Phone)
}

func TestValidateLeadRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LeadCandidate)
		fields []string
	}{
		{"short name", func(c *LeadCandidate) { c.FullName = "A" }, []string{"fullName"}},
		{"blank name", func(c *LeadCandidate) { c.FullName = "   " }, []string{"fullName"}},
		{"bad email", func(c *LeadCandidate) { c.Email = "ana-at-x" }, []string{"email"}},
		{"empty email", func(c *LeadCandidate) { c.Email = "" }, []string{"email"}},
		{"short phone", func(c *LeadCandidate) { c.Phone = "123456789" }, []string{"phone"}},
		{"unknown intent", func(c *LeadCandidate) { c.Intent = "newsletter" }, []string{"intent"}},
		{"several", func(c *LeadCandidate) {
			c.FullName = ""
			c.Phone = ""
		}, []string{"fullName", "phone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandidate()
			tt.mutate(&c)

			_, err := ValidateLead(c)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)

			got := make([]string, 0, len(verr.Fields))
			for name, msg := range verr.Fields {
				got = append(got, name)
				assert.NotEmpty(t, msg)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@x.com", NormalizeEmail("  Ana@X.com "))
}
