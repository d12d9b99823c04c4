package leads

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/navarrastar/mentorship-landing/pkg/clients/firebase"
	"github.com/navarrastar/mentorship-landing/pkg/storage"
)

// Identity attributes remote writes without a credentialed login
type Identity struct {
	UID   string
	Token string
}

// IdentityProvider reports the current identity, or false while none has
// been established
type IdentityProvider interface {
	Current(ctx context.Context) (Identity, bool)
}

// refreshMargin is how long before expiry an ID token is refreshed
const refreshMargin = time.Minute

// AnonymousIdentity signs in to Firebase Auth anonymously in the background.
// The UID is fixed once established; only the ID token is refreshed.
type AnonymousIdentity struct {
	client firebase.Client
	logger *slog.Logger

	mu      sync.Mutex
	session *firebase.Session
	pending bool
	ready   chan struct{}
}

func NewAnonymousIdentity(client firebase.Client) *AnonymousIdentity {
	return &AnonymousIdentity{
		client: client,
		logger: slog.Default().With("component", "identity"),
		ready:  make(chan struct{}),
	}
}

// Establish starts the anonymous sign-in unless one is already running or
// has succeeded. It does not block.
func (a *AnonymousIdentity) Establish(ctx context.Context) {
	a.mu.Lock()
	if a.session != nil || a.pending {
		a.mu.Unlock()
		return
	}
	a.pending = true
	a.mu.Unlock()

	go func() {
		session, err := a.client.SignInAnonymously(ctx)

		a.mu.Lock()
		defer a.mu.Unlock()
		a.pending = false
		if err != nil {
			a.logger.Error("anonymous sign-in failed", "error", err)
			return
		}
		a.session = session
		close(a.ready)
	}()
}

// Ready is closed once an identity has been established
func (a *AnonymousIdentity) Ready() <-chan struct{} {
	return a.ready
}

// Current returns the established identity. If none exists and no sign-in is
// running, a new attempt is started and false is returned; the caller's next
// user action may then find it ready.
func (a *AnonymousIdentity) Current(ctx context.Context) (Identity, bool) {
	a.mu.Lock()
	session := a.session
	a.mu.Unlock()

	if session == nil {
		a.Establish(context.WithoutCancel(ctx))
		return Identity{}, false
	}

	if time.Until(session.ExpiresAt) < refreshMargin {
		refreshed, err := a.client.RefreshSession(ctx, session.RefreshToken)
		if err != nil {
			// the stale token is still returned; the write will surface the failure
			a.logger.Warn("refreshing anonymous session failed", "uid", session.UID, "error", err)
		} else {
			refreshed.UID = session.UID
			a.mu.Lock()
			a.session = refreshed
			a.mu.Unlock()
			session = refreshed
		}
	}

	return Identity{UID: session.UID, Token: session.IDToken}, true
}

// DeviceIdentity is a locally generated identifier persisted in the key-value
// store. It is used by remote backends that have no anonymous auth of their own.
type DeviceIdentity struct {
	uid string
}

// NewDeviceIdentity loads the device id, creating it on first use
func NewDeviceIdentity(ctx context.Context, kv storage.Store) (*DeviceIdentity, error) {
	var uid string
	ok, err := storage.GetJSON(ctx, kv, storage.KeyDeviceID, &uid)
	if err != nil {
		return nil, fmt.Errorf("error reading device id: %w", err)
	}
	if !ok || uid == "" {
		uid = uuid.NewString()
		if err := storage.SetJSON(ctx, kv, storage.KeyDeviceID, uid); err != nil {
			return nil, fmt.Errorf("error writing device id: %w", err)
		}
	}
	return &DeviceIdentity{uid: uid}, nil
}

func (d *DeviceIdentity) Current(ctx context.Context) (Identity, bool) {
	return Identity{UID: d.uid}, true
}
