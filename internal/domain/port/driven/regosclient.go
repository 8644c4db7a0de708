package driven

import (
	"context"
	"encoding/json"
)

// RegosClient defines the driven port for the REGOS ERP gateway.
// Every operation is a POST of a JSON payload to a named endpoint; the
// integration token is part of the URL, so no per-call credential is
// needed. The returned body is the full {ok, result} envelope with
// ok=true; ok=false responses surface as model.ProviderRejected errors.
type RegosClient interface {
	Call(ctx context.Context, operation string, payload any) (json.RawMessage, error)
}
