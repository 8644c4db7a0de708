package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvision/docvision/internal/domain/model"
)

func TestListDocuments_Success(t *testing.T) {
	didox := &mockDidoxClient{documents: json.RawMessage(`{"data":[]}`)}
	sessions := &mockSessionStore{sessions: map[int64]string{7: "stored-key"}}
	svc := NewDocumentService(didox, sessions)

	raw, err := svc.ListDocuments(context.Background(), 7, model.DocumentQuery{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(raw))
	assert.Equal(t, "stored-key", didox.docsUserKey)
}

func TestListDocuments_AppliesDefaults(t *testing.T) {
	didox := &mockDidoxClient{documents: json.RawMessage(`{}`)}
	sessions := &mockSessionStore{sessions: map[int64]string{7: "key"}}
	svc := NewDocumentService(didox, sessions)

	_, err := svc.ListDocuments(context.Background(), 7, model.DocumentQuery{DocType: "002"})
	require.NoError(t, err)

	assert.Equal(t, 1, didox.docsQuery.Owner)
	assert.Equal(t, 1, didox.docsQuery.Page)
	assert.Equal(t, 20, didox.docsQuery.Limit)
	assert.Equal(t, "002", didox.docsQuery.DocType)
}

func TestListDocuments_KeepsExplicitValues(t *testing.T) {
	didox := &mockDidoxClient{documents: json.RawMessage(`{}`)}
	sessions := &mockSessionStore{sessions: map[int64]string{7: "key"}}
	svc := NewDocumentService(didox, sessions)

	q := model.DocumentQuery{Owner: 2, Page: 3, Limit: 50}
	_, err := svc.ListDocuments(context.Background(), 7, q)
	require.NoError(t, err)
	assert.Equal(t, q, didox.docsQuery)
}

func TestListDocuments_NoStoredSession(t *testing.T) {
	didox := &mockDidoxClient{}
	svc := NewDocumentService(didox, &mockSessionStore{})

	_, err := svc.ListDocuments(context.Background(), 7, model.DocumentQuery{})
	assert.ErrorIs(t, err, model.ErrNoStoredSession)
	// The provider is never contacted without a session.
	assert.Empty(t, didox.docsUserKey)
}

func TestListDocuments_SessionLookupFailure(t *testing.T) {
	sessions := &mockSessionStore{getErr: errors.New("db locked")}
	svc := NewDocumentService(&mockDidoxClient{}, sessions)

	_, err := svc.ListDocuments(context.Background(), 7, model.DocumentQuery{})
	assert.ErrorContains(t, err, "load provider session")
}

func TestGetDocument_Success(t *testing.T) {
	didox := &mockDidoxClient{document: json.RawMessage(`{"id":"abc"}`)}
	sessions := &mockSessionStore{sessions: map[int64]string{7: "key"}}
	svc := NewDocumentService(didox, sessions)

	raw, err := svc.GetDocument(context.Background(), 7, "abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc"}`, string(raw))
	assert.Equal(t, "abc", didox.docID)
	assert.Equal(t, "key", didox.docUserKey)
}

func TestGetDocument_MissingID(t *testing.T) {
	sessions := &mockSessionStore{sessions: map[int64]string{7: "key"}}
	svc := NewDocumentService(&mockDidoxClient{}, sessions)

	var valErr *model.ValidationError
	_, err := svc.GetDocument(context.Background(), 7, "")
	assert.ErrorAs(t, err, &valErr)
}

func TestGetDocument_NoStoredSession(t *testing.T) {
	svc := NewDocumentService(&mockDidoxClient{}, &mockSessionStore{})

	_, err := svc.GetDocument(context.Background(), 7, "abc")
	assert.ErrorIs(t, err, model.ErrNoStoredSession)
}
