package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docvision/docvision/internal/domain/model"
	"github.com/docvision/docvision/internal/domain/port/driven"
)

// Document list defaults applied when the caller leaves a field unset.
const (
	defaultOwner = 1
	defaultPage  = 1
	defaultLimit = 20
)

// DocumentService forwards document reads to the provider using the
// session key stored for the calling user. A missing session is caught
// here, before any outbound call.
type DocumentService struct {
	didox    driven.DidoxClient
	sessions driven.SessionStore
}

// NewDocumentService creates a DocumentService with the required dependencies.
func NewDocumentService(didox driven.DidoxClient, sessions driven.SessionStore) *DocumentService {
	return &DocumentService{
		didox:    didox,
		sessions: sessions,
	}
}

// ListDocuments returns the provider's document list response verbatim.
func (s *DocumentService) ListDocuments(ctx context.Context, userID int64, q model.DocumentQuery) (json.RawMessage, error) {
	userKey, err := s.sessionKey(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.didox.GetDocuments(ctx, userKey, normalizeQuery(q))
}

// GetDocument returns one document's detail response verbatim.
func (s *DocumentService) GetDocument(ctx context.Context, userID int64, documentID string) (json.RawMessage, error) {
	if documentID == "" {
		return nil, model.NewValidationError("document id is required")
	}

	userKey, err := s.sessionKey(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.didox.GetDocument(ctx, userKey, documentID)
}

func (s *DocumentService) sessionKey(ctx context.Context, userID int64) (string, error) {
	userKey, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load provider session: %w", err)
	}
	if userKey == "" {
		return "", model.ErrNoStoredSession
	}
	return userKey, nil
}

func normalizeQuery(q model.DocumentQuery) model.DocumentQuery {
	if q.Owner == 0 {
		q.Owner = defaultOwner
	}
	if q.Page == 0 {
		q.Page = defaultPage
	}
	if q.Limit == 0 {
		q.Limit = defaultLimit
	}
	return q
}
