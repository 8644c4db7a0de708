// Package eimzo implements the Signer port against the local E-IMZO
// crypto service. E-IMZO is a desktop agent listening on a loopback
// WebSocket with a self-signed certificate; requests are one-shot JSON
// messages answered in order on the same connection.
package eimzo

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/docvision/docvision/internal/domain/model"
	"github.com/docvision/docvision/internal/domain/port/driven"
)

// DefaultDialTimeout bounds the WebSocket handshake with the local agent.
const DefaultDialTimeout = 10 * time.Second

// Compile-time interface satisfaction check.
var _ driven.Signer = (*Client)(nil)

// Config carries the signer endpoint and the Origin header E-IMZO
// requires on incoming connections.
type Config struct {
	URL         string
	Origin      string
	DialTimeout time.Duration
}

// Client implements the driven.Signer port. Each operation dials a fresh
// connection; E-IMZO holds no session state the gateway cares about.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates an E-IMZO client. Certificate verification is
// disabled because the agent serves a self-signed certificate on
// loopback; the endpoint is never a remote host.
func NewClient(cfg Config) *Client {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true, //nolint:gosec // loopback agent, self-signed cert
					ServerName:         "127.0.0.1",
				},
			},
		},
	}
}

// request is the wire shape of one E-IMZO call.
type request struct {
	Plugin    string `json:"plugin"`
	Name      string `json:"name"`
	Arguments []any  `json:"arguments,omitempty"`
}

// wireCertificate is a key container entry as E-IMZO reports it.
type wireCertificate struct {
	Disk  string `json:"disk"`
	Path  string `json:"path"`
	Name  string `json:"name"`
	Alias string `json:"alias"`
}

// ListCertificates returns the key containers known to the local agent.
func (c *Client) ListCertificates(ctx context.Context) ([]model.Certificate, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	certs, err := listCertificates(ctx, conn)
	if err != nil {
		return nil, err
	}

	out := make([]model.Certificate, 0, len(certs))
	for i, wc := range certs {
		out = append(out, toCertificate(wc, i))
	}
	return out, nil
}

// Sign loads the key at certIndex and produces a PKCS7 envelope plus a
// detached signature over the base64-encoded payload. The three agent
// calls (list, load_key, create_pkcs7) run on one connection.
func (c *Client) Sign(ctx context.Context, dataB64 string, certIndex int) (string, string, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return "", "", err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	certs, err := listCertificates(ctx, conn)
	if err != nil {
		return "", "", err
	}
	if certIndex < 0 || certIndex >= len(certs) {
		return "", "", fmt.Errorf("certificate index %d out of range (have %d certificates)", certIndex, len(certs))
	}
	cert := certs[certIndex]

	var loadResp struct {
		KeyID string `json:"keyId"`
	}
	err = call(ctx, conn, request{
		Plugin:    "pfx",
		Name:      "load_key",
		Arguments: []any{cert.Disk, cert.Path, cert.Name, cert.Alias},
	}, &loadResp)
	if err != nil {
		return "", "", err
	}
	if loadResp.KeyID == "" {
		return "", "", fmt.Errorf("e-imzo did not load key for %q", cert.Name)
	}

	var signResp struct {
		Success      bool   `json:"success"`
		Reason       string `json:"reason"`
		PKCS7        string `json:"pkcs7_64"`
		SignatureHex string `json:"signature_hex"`
	}
	err = call(ctx, conn, request{
		Plugin:    "pkcs7",
		Name:      "create_pkcs7",
		Arguments: []any{dataB64, loadResp.KeyID, "no"},
	}, &signResp)
	if err != nil {
		return "", "", err
	}
	if !signResp.Success || signResp.PKCS7 == "" {
		return "", "", fmt.Errorf("e-imzo signing failed: %s", signResp.Reason)
	}

	return signResp.PKCS7, signResp.SignatureHex, nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, c.cfg.URL, &websocket.DialOptions{
		HTTPClient: c.http,
		HTTPHeader: http.Header{"Origin": []string{c.cfg.Origin}},
	})
	if err != nil {
		return nil, fmt.Errorf("dial e-imzo at %s: %w", c.cfg.URL, err)
	}
	return conn, nil
}

// call sends one request and decodes the next message as its response.
// E-IMZO answers strictly in order, so pairing by position is safe.
func call(ctx context.Context, conn *websocket.Conn, req request, resp any) error {
	if err := wsjson.Write(ctx, conn, req); err != nil {
		return fmt.Errorf("e-imzo %s/%s: write: %w", req.Plugin, req.Name, err)
	}
	if err := wsjson.Read(ctx, conn, resp); err != nil {
		return fmt.Errorf("e-imzo %s/%s: read: %w", req.Plugin, req.Name, err)
	}
	return nil
}

func listCertificates(ctx context.Context, conn *websocket.Conn) ([]wireCertificate, error) {
	var resp struct {
		Certificates []wireCertificate `json:"certificates"`
	}
	err := call(ctx, conn, request{Plugin: "pfx", Name: "list_all_certificates"}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Certificates) == 0 {
		return nil, fmt.Errorf("no e-imzo certificates found")
	}
	return resp.Certificates, nil
}

// toCertificate maps a wire entry to the domain model, pulling the
// subject CN and serial number out of the alias string. Aliases look like
// "cn=NAME,serialnumber=XX,o=ORG,...".
func toCertificate(wc wireCertificate, index int) model.Certificate {
	cert := model.Certificate{
		Disk:  wc.Disk,
		Path:  wc.Path,
		Name:  wc.Name,
		Alias: wc.Alias,
		Index: index,
	}

	for _, part := range strings.Split(wc.Alias, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch strings.ToLower(key) {
		case "cn":
			cert.CN = value
		case "serialnumber":
			cert.Serial = value
		}
	}

	return cert
}
