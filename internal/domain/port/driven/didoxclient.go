package driven

import (
	"context"
	"encoding/json"

	"github.com/docvision/docvision/internal/domain/model"
)

// DidoxClient defines the driven port for the Didox e-document API.
// Document reads return the provider body verbatim as raw JSON; the
// gateway forwards it without reshaping. All failures are normalized to
// the model error taxonomy before they leave the adapter.
type DidoxClient interface {
	// Timestamp sends a signed payload to the timestamp authority and
	// returns the base64 timestamp token. A response without the token
	// field fails with model.ErrTimestampMissing.
	Timestamp(ctx context.Context, pkcs7, signatureHex string) (string, error)

	// Login exchanges a timestamp token for a provider session key via the
	// per-subject login endpoint. The response shape varies; the adapter
	// resolves the key through an ordered list of extraction strategies
	// and fails with model.ErrSessionTokenMissing when none matches.
	Login(ctx context.Context, taxID, timestampToken, locale string) (string, error)

	// GetDocuments lists documents for the session identified by userKey.
	GetDocuments(ctx context.Context, userKey string, q model.DocumentQuery) (json.RawMessage, error)

	// GetDocument fetches one document by ID against the partner base URL.
	GetDocument(ctx context.Context, userKey, documentID string) (json.RawMessage, error)
}
