package leads

import (
	"context"

	"github.com/navarrastar/mentorship-landing/pkg/clients/airtable"
	"github.com/navarrastar/mentorship-landing/pkg/clients/firebase"
)

// FirestoreCollection is the collection leads are appended to
const FirestoreCollection = "leads"

// Writer sends one lead to a remote backend on behalf of an identity
type Writer interface {
	WriteLead(ctx context.Context, id Identity, rec Record) error
}

// RemoteStore appends leads to a remote document store. It refuses to write
// until the identity provider has an identity.
type RemoteStore struct {
	writer   Writer
	identity IdentityProvider
}

func NewRemoteStore(writer Writer, identity IdentityProvider) *RemoteStore {
	return &RemoteStore{writer: writer, identity: identity}
}

func (s *RemoteStore) Append(ctx context.Context, rec Record) error {
	id, ok := s.identity.Current(ctx)
	if !ok {
		return ErrNotReady
	}
	if err := s.writer.WriteLead(ctx, id, rec); err != nil {
		return &RemoteWriteError{Err: err}
	}
	return nil
}

func remoteFields(id Identity, rec Record) map[string]interface{} {
	return map[string]interface{}{
		"fullName": rec.Lead.FullName,
		"email":    rec.Lead.Email,
		"phone":    rec.Lead.Phone,
		"intent":   string(rec.Lead.Intent),
		"uid":      id.UID,
	}
}

// FirestoreWriter writes leads as Firestore documents keyed by record id.
// createdAt is set by the server.
type FirestoreWriter struct {
	client     firebase.Client
	collection string
}

func NewFirestoreWriter(client firebase.Client) *FirestoreWriter {
	return &FirestoreWriter{client: client, collection: FirestoreCollection}
}

func (w *FirestoreWriter) WriteLead(ctx context.Context, id Identity, rec Record) error {
	return w.client.CreateDocument(ctx, id.Token, w.collection, rec.ID, remoteFields(id, rec))
}

// AirtableWriter writes leads as rows of an Airtable table. Airtable stamps
// createdTime itself.
type AirtableWriter struct {
	client airtable.Client
	table  string
}

func NewAirtableWriter(client airtable.Client, table string) *AirtableWriter {
	return &AirtableWriter{client: client, table: table}
}

func (w *AirtableWriter) WriteLead(ctx context.Context, id Identity, rec Record) error {
	_, err := w.client.CreateRecord(ctx, w.table, remoteFields(id, rec))
	return err
}
