// Package httphandler is the HTTP driving adapter. Every route past the
// login and health endpoints requires a bearer token; provider
// credentials are resolved server-side and never appear in a response.
package httphandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/docvision/docvision/internal/application"
	"github.com/docvision/docvision/internal/domain/model"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	authSvc    *application.AuthService
	relaySvc   *application.RelayService
	docSvc     *application.DocumentService
	catalogSvc *application.CatalogService
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	authSvc *application.AuthService,
	relaySvc *application.RelayService,
	docSvc *application.DocumentService,
	catalogSvc *application.CatalogService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		authSvc:    authSvc,
		relaySvc:   relaySvc,
		docSvc:     docSvc,
		catalogSvc: catalogSvc,
		logger:     logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with CORS, logging and recovery middleware.
func NewServeMux(h *Handler, allowedOrigins []string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/user-login", h.UserLogin)
	mux.HandleFunc("POST /api/auth/didox-login", h.requireAuth(h.DidoxLogin))
	mux.HandleFunc("POST /api/auth/eimzo-login", h.requireAuth(h.EimzoLogin))
	mux.HandleFunc("GET /api/auth/eimzo-certificates", h.requireAuth(h.EimzoCertificates))

	mux.HandleFunc("GET /api/documents", h.requireAuth(h.ListDocuments))
	mux.HandleFunc("GET /api/documents/{id}", h.requireAuth(h.GetDocument))

	mux.HandleFunc("POST /api/regos/match-products", h.requireAuth(h.MatchProducts))
	mux.HandleFunc("POST /api/regos/add-item", h.requireAuth(h.AddItem))
	mux.HandleFunc("POST /api/regos/add-partner", h.requireAuth(h.AddPartner))
	mux.HandleFunc("POST /api/regos/get-partners", h.requireAuth(h.GetPartners))
	mux.HandleFunc("POST /api/regos/get-partner-groups", h.requireAuth(h.GetPartnerGroups))
	mux.HandleFunc("POST /api/regos/get-stocks", h.requireAuth(h.GetStocks))
	mux.HandleFunc("POST /api/regos/get-currencies", h.requireAuth(h.GetCurrencies))
	mux.HandleFunc("POST /api/regos/get-price-types", h.requireAuth(h.GetPriceTypes))
	mux.HandleFunc("POST /api/regos/get-item-groups", h.requireAuth(h.GetItemGroups))
	mux.HandleFunc("POST /api/regos/add-doc-purchase", h.requireAuth(h.AddDocPurchase))
	mux.HandleFunc("POST /api/regos/add-purchase-operation", h.requireAuth(h.AddPurchaseOperation))

	mux.HandleFunc("GET /api/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = corsMiddleware(allowedOrigins, wrapped)

	return wrapped
}

// UserLogin verifies local credentials and returns a bearer token.
func (h *Handler) UserLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Warn("login failed", "username", req.Username)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// DidoxLogin runs the signature relay for a browser-signed payload and
// stores the resulting session server-side. The response carries only a
// success signal.
func (h *Handler) DidoxLogin(w http.ResponseWriter, r *http.Request) {
	var req DidoxLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := userFromContext(r.Context())
	err := h.relaySvc.ExchangeSignature(r.Context(), user.ID, req.PKCS7, req.SignatureHex, req.TaxID, req.Locale)
	if err != nil {
		h.logger.Error("signature relay failed", "user_id", user.ID, "error", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "session established"})
}

// EimzoLogin signs the tax ID with a local key and runs the full relay.
func (h *Handler) EimzoLogin(w http.ResponseWriter, r *http.Request) {
	var req EimzoLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := userFromContext(r.Context())
	err := h.relaySvc.LoginWithSigner(r.Context(), user.ID, req.TaxID, req.Locale, req.CertIndex)
	if err != nil {
		h.logger.Error("signer login failed", "user_id", user.ID, "error", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "session established"})
}

// EimzoCertificates lists the key containers available to the local signer.
func (h *Handler) EimzoCertificates(w http.ResponseWriter, r *http.Request) {
	certs, err := h.relaySvc.Certificates(r.Context())
	if err != nil {
		h.logger.Error("certificate listing failed", "error", err)
		writeError(w, http.StatusBadGateway, "signing service unavailable")
		return
	}

	writeJSON(w, http.StatusOK, certs)
}

// ListDocuments forwards a document list request using the stored session.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q, err := documentQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user := userFromContext(r.Context())
	raw, err := h.docSvc.ListDocuments(r.Context(), user.ID, q)
	if err != nil {
		h.logger.Error("document list failed", "user_id", user.ID, "error", err)
		writeDomainError(w, err)
		return
	}

	writeRaw(w, http.StatusOK, raw)
}

// GetDocument forwards a single-document request using the stored session.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	raw, err := h.docSvc.GetDocument(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		h.logger.Error("document fetch failed", "user_id", user.ID, "error", err)
		writeDomainError(w, err)
		return
	}

	writeRaw(w, http.StatusOK, raw)
}

// MatchProducts resolves products to ERP item IDs.
func (h *Handler) MatchProducts(w http.ResponseWriter, r *http.Request) {
	var req MatchProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.forward(w, r, func() (json.RawMessage, error) {
		return h.catalogSvc.MatchItems(r.Context(), req.Type, req.Data)
	})
}

// AddItem creates an item in the ERP.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	h.forwardObject(w, r, h.catalogSvc.AddItem)
}

// AddPartner creates a counterparty in the ERP.
func (h *Handler) AddPartner(w http.ResponseWriter, r *http.Request) {
	h.forwardObject(w, r, h.catalogSvc.AddPartner)
}

// GetPartners lists ERP counterparties matching the filter body.
func (h *Handler) GetPartners(w http.ResponseWriter, r *http.Request) {
	h.forwardObject(w, r, h.catalogSvc.GetPartners)
}

// GetPartnerGroups lists ERP counterparty groups matching the filter body.
func (h *Handler) GetPartnerGroups(w http.ResponseWriter, r *http.Request) {
	h.forwardObject(w, r, h.catalogSvc.GetPartnerGroups)
}

// GetStocks lists ERP warehouses matching the filter body.
func (h *Handler) GetStocks(w http.ResponseWriter, r *http.Request) {
	h.forwardObject(w, r, h.catalogSvc.GetStocks)
}

// GetCurrencies lists the ERP currencies.
func (h *Handler) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, func() (json.RawMessage, error) {
		return h.catalogSvc.GetCurrencies(r.Context())
	})
}

// GetPriceTypes lists the ERP price types.
func (h *Handler) GetPriceTypes(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, func() (json.RawMessage, error) {
		return h.catalogSvc.GetPriceTypes(r.Context())
	})
}

// GetItemGroups lists the ERP item groups.
func (h *Handler) GetItemGroups(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, func() (json.RawMessage, error) {
		return h.catalogSvc.GetItemGroups(r.Context())
	})
}

// AddDocPurchase creates a purchase document in the ERP.
func (h *Handler) AddDocPurchase(w http.ResponseWriter, r *http.Request) {
	h.forwardObject(w, r, h.catalogSvc.AddDocPurchase)
}

// AddPurchaseOperation creates receipt operations for a purchase document.
func (h *Handler) AddPurchaseOperation(w http.ResponseWriter, r *http.Request) {
	var req PurchaseOperationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.forward(w, r, func() (json.RawMessage, error) {
		return h.catalogSvc.AddPurchaseOperations(r.Context(), req.Operations)
	})
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// forward runs an ERP call and writes the raw provider response.
func (h *Handler) forward(w http.ResponseWriter, r *http.Request, call func() (json.RawMessage, error)) {
	raw, err := call()
	if err != nil {
		h.logger.Error("erp forward failed", "path", r.URL.Path, "error", err)
		writeDomainError(w, err)
		return
	}

	writeRaw(w, http.StatusOK, raw)
}

// forwardObject decodes a free-form JSON object body and forwards it.
// Unknown fields pass through untouched; the service layer enforces the
// documented required ones.
func (h *Handler) forwardObject(w http.ResponseWriter, r *http.Request, call func(ctx context.Context, body map[string]any) (json.RawMessage, error)) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.forward(w, r, func() (json.RawMessage, error) {
		return call(r.Context(), body)
	})
}

// documentQuery parses the list filter parameters from the URL query.
func documentQuery(r *http.Request) (model.DocumentQuery, error) {
	q := model.DocumentQuery{
		DocType:  r.URL.Query().Get("document_type"),
		DateFrom: r.URL.Query().Get("date_from"),
		DateTo:   r.URL.Query().Get("date_to"),
		Partner:  r.URL.Query().Get("partner"),
	}

	var err error
	if q.Owner, err = intParam(r, "owner"); err != nil {
		return q, err
	}
	if q.Page, err = intParam(r, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(r, "limit"); err != nil {
		return q, err
	}
	return q, nil
}

// intParam parses an optional non-negative integer query parameter.
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, model.NewValidationError("invalid %s parameter", name)
	}
	return v, nil
}
