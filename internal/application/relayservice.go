package application

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/docvision/docvision/internal/domain/model"
	"github.com/docvision/docvision/internal/domain/port/driven"
)

// RelayService drives the two-step provider authentication handshake:
// a signed payload is exchanged for a timestamp token, the timestamp
// token for a provider session key, and the key is stored server-side.
// The key itself never travels back through this service; callers get a
// success/failure signal only.
type RelayService struct {
	didox    driven.DidoxClient
	sessions driven.SessionStore
	signer   driven.Signer
}

// NewRelayService creates a RelayService with the required dependencies.
func NewRelayService(didox driven.DidoxClient, sessions driven.SessionStore, signer driven.Signer) *RelayService {
	return &RelayService{
		didox:    didox,
		sessions: sessions,
		signer:   signer,
	}
}

// ExchangeSignature runs the timestamp and login steps for a signature
// produced by the client and stores the resulting session key for the
// user. The stored key replaces any previous one.
func (s *RelayService) ExchangeSignature(ctx context.Context, userID int64, pkcs7, signatureHex, taxID, locale string) error {
	if pkcs7 == "" || signatureHex == "" {
		return model.NewValidationError("pkcs7 and signature_hex are required")
	}
	if taxID == "" {
		return model.NewValidationError("tax_id is required")
	}

	timestampToken, err := s.didox.Timestamp(ctx, pkcs7, signatureHex)
	if err != nil {
		return err
	}

	userKey, err := s.didox.Login(ctx, taxID, timestampToken, locale)
	if err != nil {
		return err
	}

	if err := s.sessions.Upsert(ctx, userID, userKey); err != nil {
		return fmt.Errorf("store provider session: %w", err)
	}

	slog.Info("provider session established", "user_id", userID)
	return nil
}

// LoginWithSigner signs the tax ID with a local E-IMZO key and runs the
// full handshake with the result. certIndex selects the key from the
// agent's certificate list.
func (s *RelayService) LoginWithSigner(ctx context.Context, userID int64, taxID, locale string, certIndex int) error {
	if taxID == "" {
		return model.NewValidationError("tax_id is required")
	}

	dataB64 := base64.StdEncoding.EncodeToString([]byte(taxID))
	pkcs7, signatureHex, err := s.signer.Sign(ctx, dataB64, certIndex)
	if err != nil {
		return fmt.Errorf("sign with local key: %w", err)
	}

	return s.ExchangeSignature(ctx, userID, pkcs7, signatureHex, taxID, locale)
}

// Certificates lists the key containers available to the local signer.
func (s *RelayService) Certificates(ctx context.Context) ([]model.Certificate, error) {
	return s.signer.ListCertificates(ctx)
}
