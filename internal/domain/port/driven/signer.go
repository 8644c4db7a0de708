package driven

import (
	"context"

	"github.com/docvision/docvision/internal/domain/model"
)

// Signer defines the driven port for the local E-IMZO signing service.
// The service runs outside this codebase; only its request/response
// contract is consumed here.
type Signer interface {
	// ListCertificates returns the key containers known to the signer.
	ListCertificates(ctx context.Context) ([]model.Certificate, error)

	// Sign loads the key at certIndex and produces a PKCS7 envelope and
	// detached signature over the base64-encoded payload.
	Sign(ctx context.Context, dataB64 string, certIndex int) (pkcs7 string, signatureHex string, err error)
}
