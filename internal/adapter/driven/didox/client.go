// Package didox implements the DidoxClient port against the Didox
// e-document HTTP API. It covers both halves of the integration: the
// signature relay steps (timestamp, login) and authenticated document
// reads. Every failure leaving this package is one of the model error
// taxonomy kinds; no transport error type escapes.
package didox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/docvision/docvision/internal/domain/model"
	"github.com/docvision/docvision/internal/domain/port/driven"
)

// DefaultTimeout bounds each outbound call when the config carries none.
const DefaultTimeout = 60 * time.Second

// maxLoggedBody caps how much of a provider error body is kept for logs
// and error messages.
const maxLoggedBody = 500

// DefaultLocale is used for the login step when the caller supplies none.
const DefaultLocale = "ru"

// Compile-time interface satisfaction check.
var _ driven.DidoxClient = (*Client)(nil)

// Config carries the per-deployment settings for the Didox client.
// Didox exposes two base URLs: the main API for document lists and a
// partner API for auth, timestamps and single-document reads.
type Config struct {
	BaseURL        string
	PartnerBaseURL string
	PartnerToken   string
	Timeout        time.Duration
}

// Client implements the driven.DidoxClient port.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a Didox client. A zero Timeout falls back to
// DefaultTimeout.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// timestampResponse is the expected shape of the timestamp authority reply.
type timestampResponse struct {
	TimeStampTokenB64 string `json:"timeStampTokenB64"`
}

// Timestamp sends the signed payload to the timestamp authority and
// returns the base64 timestamp token. A 200 response without the token
// field is a hard failure, not an empty result.
func (c *Client) Timestamp(ctx context.Context, pkcs7, signatureHex string) (string, error) {
	body := map[string]string{
		"pkcs7":        pkcs7,
		"signatureHex": signatureHex,
	}

	raw, err := c.do(ctx, http.MethodPost, c.cfg.PartnerBaseURL, "dsvs/timestamp", nil, body, "")
	if err != nil {
		return "", err
	}

	var resp timestampResponse
	if err := json.Unmarshal(raw, &resp); err != nil || resp.TimeStampTokenB64 == "" {
		slog.Error("didox timestamp response carries no token", "body_len", len(raw))
		return "", model.ErrTimestampMissing
	}

	return resp.TimeStampTokenB64, nil
}

// Login exchanges a timestamp token for a session key via the per-subject
// login endpoint. The response shape is not guaranteed: the key may sit
// under one of several field names or the whole body may be a bare JSON
// string. Extraction runs the fixed strategy order in sessionTokenRules.
func (c *Client) Login(ctx context.Context, taxID, timestampToken, locale string) (string, error) {
	if locale == "" {
		locale = DefaultLocale
	}

	endpoint := fmt.Sprintf("auth/%s/token/%s", url.PathEscape(taxID), url.PathEscape(locale))
	raw, err := c.do(ctx, http.MethodPost, c.cfg.PartnerBaseURL, endpoint, nil, map[string]string{"signature": timestampToken}, "")
	if err != nil {
		return "", err
	}

	token, ok := extractSessionToken(raw)
	if !ok {
		// The raw response goes to the log for diagnostics only; it is
		// never handed to a caller as a resolved credential.
		slog.Error("didox login response carries no recognizable token", "body", truncate(raw))
		return "", model.ErrSessionTokenMissing
	}

	return token, nil
}

// GetDocuments lists documents for the given session key.
func (c *Client) GetDocuments(ctx context.Context, userKey string, q model.DocumentQuery) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("owner", strconv.Itoa(q.Owner))
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.DocType != "" {
		params.Set("doctype", q.DocType)
	}
	if q.DateFrom != "" {
		params.Set("dateFromCreated", q.DateFrom)
	}
	if q.DateTo != "" {
		params.Set("dateToCreated", q.DateTo)
	}
	if q.Partner != "" {
		params.Set("partner", q.Partner)
	}

	return c.do(ctx, http.MethodGet, c.cfg.BaseURL, "documents", params, nil, userKey)
}

// GetDocument fetches a single document by ID. Document detail lives on
// the partner base URL, not the main API.
func (c *Client) GetDocument(ctx context.Context, userKey, documentID string) (json.RawMessage, error) {
	endpoint := "documents/" + url.PathEscape(documentID)
	return c.do(ctx, http.MethodGet, c.cfg.PartnerBaseURL, endpoint, nil, nil, userKey)
}

// do executes one outbound call and normalizes every failure into the
// model error taxonomy. GET payloads travel as query parameters, POST
// payloads as a JSON body; the caller-supplied method decides, never the
// payload shape.
func (c *Client) do(ctx context.Context, method, baseURL, endpoint string, params url.Values, body any, userKey string) (json.RawMessage, error) {
	fullURL := joinURL(baseURL, endpoint)
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request for %s: %w", fullURL, err)
		}
		reqBody = bytes.NewReader(data)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", fullURL, err)
	}

	// Per-user session key and static partner credential travel together;
	// they are distinct auth levels on the Didox side.
	if userKey != "" {
		req.Header.Set("user-key", userKey)
	}
	req.Header.Set("Partner-Authorization", c.cfg.PartnerToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, normalizeTransportErr(fullURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, normalizeTransportErr(fullURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("didox call failed", "url", fullURL, "status", resp.StatusCode, "body", truncate(data))
		return nil, &model.ProviderError{
			Kind:   model.ProviderBadStatus,
			URL:    fullURL,
			Status: resp.StatusCode,
			Body:   truncate(data),
		}
	}

	if !json.Valid(data) {
		slog.Error("didox returned malformed json", "url", fullURL, "body", truncate(data))
		return nil, &model.ProviderError{
			Kind: model.ProviderTransport,
			URL:  fullURL,
			Err:  errors.New("malformed JSON body"),
		}
	}

	slog.Debug("didox call succeeded", "url", fullURL, "method", method)
	return json.RawMessage(data), nil
}

// normalizeTransportErr maps a client-level error to the taxonomy:
// deadline expiry becomes a timeout, everything else a transport failure.
func normalizeTransportErr(fullURL string, err error) error {
	kind := model.ProviderTransport
	var netErr interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = model.ProviderTimeout
	}
	slog.Error("didox call failed", "url", fullURL, "kind", string(kind), "error", err)
	return &model.ProviderError{Kind: kind, URL: fullURL, Err: err}
}

// joinURL joins a base URL and an endpoint with exactly one slash.
func joinURL(base, endpoint string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// truncate bounds a response body for logs and error payloads.
func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody])
	}
	return string(b)
}
