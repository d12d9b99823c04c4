package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/navarrastar/mentorship-landing/pkg/brochure"
	"github.com/navarrastar/mentorship-landing/pkg/leads"
	"github.com/navarrastar/mentorship-landing/pkg/models"
	"github.com/navarrastar/mentorship-landing/pkg/utils"
)

// SubmissionState is the terminal state of one submission attempt
type SubmissionState string

const (
	StateRejected         SubmissionState = "rejected"
	StateAwaitingIdentity SubmissionState = "awaiting-identity"
	StateSucceeded        SubmissionState = "succeeded"
	StateFailed           SubmissionState = "failed"
)

// SubmissionResult describes how a submission ended. Every state is final; a
// new attempt needs a new Submit call.
type SubmissionResult struct {
	State       SubmissionState
	LeadID      string
	Remote      bool // the remote store accepted the lead
	FieldErrors map[string]string
	Err         error
	Download    *brochure.Download
}

// LeadStore is the composite store submissions are written to
type LeadStore interface {
	leads.Store
	RemoteEnabled() bool
}

// LeadArchive reads back the local archive
type LeadArchive interface {
	List(ctx context.Context) ([]models.ArchivedLead, error)
}

// BrochureScheduler arranges the one-shot brochure download
type BrochureScheduler interface {
	Schedule() brochure.Download
}

// LeadSubmissionService defines the interface for handling form submissions
type LeadSubmissionService interface {
	Submit(ctx context.Context, candidate models.LeadCandidate) SubmissionResult
	Archive(ctx context.Context) ([]models.ArchivedLead, error)
}

type leadSubmissionServiceImpl struct {
	store     LeadStore
	archive   LeadArchive
	brochures BrochureScheduler
	now       func() time.Time
	logger    *slog.Logger
}

// NewLeadSubmissionService creates a new submission service
func NewLeadSubmissionService(store LeadStore, archive LeadArchive, brochures BrochureScheduler) LeadSubmissionService {
	return &leadSubmissionServiceImpl{
		store:     store,
		archive:   archive,
		brochures: brochures,
		now:       time.Now,
		logger:    slog.Default().With("component", "submission"),
	}
}

// Submit validates the candidate and writes it to the lead stores
func (s *leadSubmissionServiceImpl) Submit(ctx context.Context, candidate models.LeadCandidate) SubmissionResult {
	s.logger.Debug("submission state", "state", "validating")
	lead, err := models.ValidateLead(candidate)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			s.logger.Info("submission rejected", "fields", verr.Fields)
			return SubmissionResult{State: StateRejected, FieldErrors: verr.Fields, Err: err}
		}
		return SubmissionResult{State: StateRejected, Err: err}
	}

	rec := leads.Record{
		ID:          uuid.NewString(),
		Lead:        lead,
		SubmittedAt: s.now(),
	}
	logger := s.logger.With("lead", rec.ID, "contact", utils.Fingerprint(lead.Email), "intent", lead.Intent)

	logger.Debug("submission state", "state", "localWriting", "remote", s.store.RemoteEnabled())
	err = s.store.Append(ctx, rec)

	result := SubmissionResult{LeadID: rec.ID}
	switch {
	case err == nil:
		result.State = StateSucceeded
		result.Remote = s.store.RemoteEnabled()
	case errors.Is(err, leads.ErrNotReady):
		logger.Warn("submission awaiting identity")
		result.State = StateAwaitingIdentity
		result.Err = err
		return result
	default:
		logger.Error("remote lead write failed", "error", err)
		result.State = StateFailed
		result.Err = err
		return result
	}

	logger.Info("submission succeeded", "remote", result.Remote)

	if lead.Intent == models.IntentBrochure && s.brochures != nil {
		dl := s.brochures.Schedule()
		result.Download = &dl
	}
	return result
}

// Archive returns the local lead archive in submission order
func (s *leadSubmissionServiceImpl) Archive(ctx context.Context) ([]models.ArchivedLead, error) {
	return s.archive.List(ctx)
}
