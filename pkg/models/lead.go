package models

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Intent is the declared purpose of a lead submission
type Intent string

const (
	IntentBrochure Intent = "brochure"
	IntentEnroll   Intent = "enroll"
)

// LeadCandidate represents the raw data coming from the landing page form
type LeadCandidate struct {
	FullName string `json:"fullName" validate:"min=2"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"min=10"`
	Intent   Intent `json:"intent" validate:"oneof=brochure enroll"`
}

// LeadSubmission is a candidate that passed validation. It is never mutated
// after ValidateLead returns it.
type LeadSubmission struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Intent   Intent `json:"intent"`
}

// fieldMessages maps a json field name to the message shown next to the input.
var fieldMessages = map[string]string{
	"fullName": "Please enter your full name",
	"email":    "Please enter a valid email address",
	"phone":    "Please enter a valid phone number",
	"intent":   "Please choose brochure or enroll",
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func schema() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateLead checks a candidate against the lead form rules. It is pure: the
// candidate is copied, trimmed and defaulted, and nothing is cached between
// calls.
func ValidateLead(candidate LeadCandidate) (LeadSubmission, error) {
	c := candidate
	c.FullName = strings.TrimSpace(c.FullName)
	c.Email = strings.TrimSpace(c.Email)
	if c.Intent == "" {
		c.Intent = IntentEnroll
	}

	if err := schema().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return LeadSubmission{}, fmt.Errorf("error validating lead: %w", err)
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessages[fe.Field()]
		}
		return LeadSubmission{}, &ValidationError{Fields: fields}
	}

	return LeadSubmission{
		FullName: c.FullName,
		Email:    c.Email,
		Phone:    c.Phone,
		Intent:   c.Intent,
	}, nil
}

// ValidationError carries one message per violated field
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}
