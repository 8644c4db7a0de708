package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docvision/docvision/internal/application"
	"github.com/docvision/docvision/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeRaw forwards an upstream JSON body verbatim.
func writeRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps an application error to its HTTP status. Upstream
// failures surface as gateway errors, client mistakes as 400/401; anything
// unclassified is a plain 500 with no detail leaked.
func writeDomainError(w http.ResponseWriter, err error) {
	var valErr *model.ValidationError
	var provErr *model.ProviderError

	switch {
	case errors.As(err, &valErr):
		writeError(w, http.StatusBadRequest, valErr.Message)
	case errors.Is(err, model.ErrAuthenticationFailed):
		writeError(w, http.StatusUnauthorized, model.ErrAuthenticationFailed.Error())
	case errors.Is(err, model.ErrNoStoredSession):
		writeError(w, http.StatusBadRequest, model.ErrNoStoredSession.Error())
	case errors.Is(err, model.ErrSessionTokenMissing):
		writeError(w, http.StatusUnauthorized, model.ErrSessionTokenMissing.Error())
	case errors.Is(err, model.ErrTimestampMissing):
		writeError(w, http.StatusBadGateway, model.ErrTimestampMissing.Error())
	case errors.As(err, &provErr):
		writeProviderError(w, provErr)
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeProviderError(w http.ResponseWriter, provErr *model.ProviderError) {
	switch provErr.Kind {
	case model.ProviderTimeout:
		writeError(w, http.StatusGatewayTimeout, "upstream request timed out")
	case model.ProviderRejected:
		writeError(w, http.StatusBadRequest, provErr.Error())
	default:
		// Transport failures and upstream non-200s both read as a broken
		// gateway from the client's side.
		writeError(w, http.StatusBadGateway, "upstream request failed")
	}
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// LoginRequest is the JSON body for the local login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// DidoxLoginRequest is the JSON body for the signature relay endpoint.
// The signature material comes from the browser-side signing plugin.
type DidoxLoginRequest struct {
	PKCS7        string `json:"pkcs7"`
	SignatureHex string `json:"signature_hex"`
	TaxID        string `json:"tax_id"`
	Locale       string `json:"locale,omitempty"`
}

// EimzoLoginRequest is the JSON body for the server-side signing login.
type EimzoLoginRequest struct {
	TaxID     string `json:"tax_id"`
	CertIndex int    `json:"cert_index"`
	Locale    string `json:"locale,omitempty"`
}

// StatusResponse signals that a stateful operation completed. Provider
// credentials never appear here.
type StatusResponse struct {
	Status string `json:"status"`
}

// MatchProductsRequest is the JSON body for the product matching endpoint.
type MatchProductsRequest struct {
	Type string                   `json:"type"`
	Data []application.MatchEntry `json:"data"`
}

// PurchaseOperationsRequest is the JSON body for the purchase operations
// endpoint. The operations array is forwarded to the ERP as-is.
type PurchaseOperationsRequest struct {
	Operations []map[string]any `json:"operations"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
