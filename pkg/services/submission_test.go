package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navarrastar/mentorship-landing/pkg/brochure"
	"github.com/navarrastar/mentorship-landing/pkg/leads"
	"github.com/navarrastar/mentorship-landing/pkg/models"
	"github.com/navarrastar/mentorship-landing/pkg/storage"
)

// countingKV counts writes going to the wrapped store
type countingKV struct {
	storage.Store
	mu     sync.Mutex
	writes int
	fail   bool
}

func (c *countingKV) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.writes++
	fail := c.fail
	c.mu.Unlock()
	if fail {
		return errors.New("quota exceeded")
	}
	return c.Store.Set(ctx, key, value)
}

type fakeRemote struct {
	records []leads.Record
	err     error
}

func (f *fakeRemote) Append(ctx context.Context, rec leads.Record) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

type countingTrigger struct {
	mu    sync.Mutex
	fires int
}

func (c *countingTrigger) Issue() string { return "ticket-1" }

func (c *countingTrigger) Fire(ticket string) {
	c.mu.Lock()
	c.fires++
	c.mu.Unlock()
}

func (c *countingTrigger) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fires
}

type submissionFixture struct {
	kv      *countingKV
	local   *leads.LocalStore
	remote  *fakeRemote
	trigger *countingTrigger
	service LeadSubmissionService
}

func newSubmissionFixture(t *testing.T, remote *fakeRemote) *submissionFixture {
	t.Helper()
	kv := &countingKV{Store: storage.NewMemoryStore()}
	local := leads.NewLocalStore(kv)

	var remoteStore leads.Store
	if remote != nil {
		remoteStore = remote
	}
	trigger := &countingTrigger{}
	service := NewLeadSubmissionService(
		leads.NewFanoutStore(local, remoteStore),
		local,
		brochure.NewScheduler(20*time.Millisecond, trigger),
	)
	return &submissionFixture{kv: kv, local: local, remote: remote, trigger: trigger, service: service}
}

func (f *submissionFixture) archiveLen(t *testing.T) int {
	t.Helper()
	archive, err := f.local.List(context.Background())
	require.NoError(t, err)
	return len(archive)
}

func ana(intent models.Intent) models.LeadCandidate {
	return models.LeadCandidate{
		FullName: "Ana Lee",
		Email:    "ana@x.com",
		Phone:    "9998887776",
		Intent:   intent,
	}
}

func TestSubmitRejectsWithoutWrites(t *testing.T) {
	tests := []struct {
		name      string
		candidate models.LeadCandidate
		fields    []string
	}{
		{"short name", models.LeadCandidate{FullName: "A", Email: "ana@x.com", Phone: "9998887776"}, []string{"fullName"}},
		{"bad email and phone", models.LeadCandidate{FullName: "Ana Lee", Email: "nope", Phone: "123"}, []string{"email", "phone"}},
		{"bad intent", models.LeadCandidate{FullName: "Ana Lee", Email: "ana@x.com", Phone: "9998887776", Intent: "call-me"}, []string{"intent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSubmissionFixture(t, &fakeRemote{})

			res := f.service.Submit(context.Background(), tt.candidate)

			assert.Equal(t, StateRejected, res.State)
			var keys []string
			for k := range res.FieldErrors {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tt.fields, keys)
			assert.Zero(t, f.kv.writes)
			assert.Empty(t, f.remote.records)
			assert.Nil(t, res.Download)
		})
	}
}

func TestSubmitRemoteSuccessAppendsOneLocalEntry(t *testing.T) {
	f := newSubmissionFixture(t, &fakeRemote{})
	fixed := time.Date(2026, 10, 19, 14, 5, 0, 0, time.UTC)
	f.service.(*leadSubmissionServiceImpl).now = func() time.Time { return fixed }

	before := f.archiveLen(t)
	res := f.service.Submit(context.Background(), ana(models.IntentEnroll))

	require.Equal(t, StateSucceeded, res.State)
	assert.True(t, res.Remote)
	assert.NoError(t, res.Err)
	assert.Equal(t, before+1, f.archiveLen(t))

	archive, err := f.service.Archive(context.Background())
	require.NoError(t, err)
	entry := archive[len(archive)-1]
	assert.Equal(t, models.LeadSubmission{
		FullName: "Ana Lee",
		Email:    "ana@x.com",
		Phone:    "9998887776",
		Intent:   models.IntentEnroll,
	}, entry.LeadSubmission)
	assert.Equal(t, models.LeadSource, entry.Source)
	assert.Equal(t, "2026-10-19T14:05:00Z", entry.SubmittedAt)
	assert.Equal(t, res.LeadID, entry.ID)

	require.Len(t, f.remote.records, 1)
	assert.Equal(t, res.LeadID, f.remote.records[0].ID)
}

func TestSubmitEnrollRemoteDisabled(t *testing.T) {
	f := newSubmissionFixture(t, nil)

	res := f.service.Submit(context.Background(), ana(models.IntentEnroll))

	assert.Equal(t, StateSucceeded, res.State)
	assert.False(t, res.Remote)
	assert.Equal(t, 1, f.archiveLen(t))
	assert.Nil(t, res.Download)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, f.trigger.count(), "no download for enroll")
}

func TestSubmitBrochureTriggersDownloadOnce(t *testing.T) {
	f := newSubmissionFixture(t, nil)

	res := f.service.Submit(context.Background(), ana(models.IntentBrochure))

	require.Equal(t, StateSucceeded, res.State)
	require.NotNil(t, res.Download)
	assert.Equal(t, "ticket-1", res.Download.Ticket)
	assert.Zero(t, f.trigger.count(), "fires only after the delay")

	require.Eventually(t, func() bool { return f.trigger.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, f.trigger.count())
}

func TestSubmitAwaitingIdentity(t *testing.T) {
	f := newSubmissionFixture(t, &fakeRemote{err: leads.ErrNotReady})

	res := f.service.Submit(context.Background(), ana(models.IntentBrochure))

	assert.Equal(t, StateAwaitingIdentity, res.State)
	assert.ErrorIs(t, res.Err, leads.ErrNotReady)
	assert.Equal(t, 1, f.archiveLen(t), "local copy is written first")
	assert.Nil(t, res.Download)
}

func TestSubmitRemoteFailure(t *testing.T) {
	f := newSubmissionFixture(t, &fakeRemote{err: &leads.RemoteWriteError{Err: errors.New("503")}})

	res := f.service.Submit(context.Background(), ana(models.IntentBrochure))

	assert.Equal(t, StateFailed, res.State)
	var rwe *leads.RemoteWriteError
	assert.True(t, errors.As(res.Err, &rwe))
	assert.Equal(t, 1, f.archiveLen(t))
	assert.Nil(t, res.Download)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, f.trigger.count())
}

func TestSubmitLocalFailureIsNotSurfaced(t *testing.T) {
	f := newSubmissionFixture(t, nil)
	f.kv.fail = true

	res := f.service.Submit(context.Background(), ana(models.IntentEnroll))

	assert.Equal(t, StateSucceeded, res.State)
	assert.NoError(t, res.Err)
	assert.Equal(t, 1, f.kv.writes)
}

func TestSubmitValidatesEveryAttempt(t *testing.T) {
	f := newSubmissionFixture(t, nil)

	first := f.service.Submit(context.Background(), ana(models.IntentEnroll))
	bad := ana(models.IntentEnroll)
	bad.Phone = "1"
	second := f.service.Submit(context.Background(), bad)

	assert.Equal(t, StateSucceeded, first.State)
	assert.Equal(t, StateRejected, second.State)
	assert.Equal(t, 1, f.archiveLen(t))
}
