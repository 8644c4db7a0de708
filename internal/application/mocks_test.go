package application

import (
	"context"
	"encoding/json"

	"github.com/docvision/docvision/internal/domain/model"
)

// --- Mock port implementations shared by the service tests ---

type mockUserStore struct {
	users         map[string]*model.User
	getErr        error
	bootstrapMade bool
}

func (m *mockUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.users[username], nil
}

func (m *mockUserStore) Create(_ context.Context, username, passwordHash string, superuser bool) (model.User, error) {
	return model.User{ID: 1, Username: username, PasswordHash: passwordHash, IsSuperuser: superuser}, nil
}

func (m *mockUserStore) EnsureBootstrapSuperuser(_ context.Context, _ string) (bool, error) {
	if m.users["admin"] != nil {
		return false, nil
	}
	m.bootstrapMade = true
	return true, nil
}

type mockSessionStore struct {
	sessions  map[int64]string
	upsertErr error
	getErr    error
}

func (m *mockSessionStore) Upsert(_ context.Context, userID int64, userKey string) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.sessions == nil {
		m.sessions = map[int64]string{}
	}
	m.sessions[userID] = userKey
	return nil
}

func (m *mockSessionStore) Get(_ context.Context, userID int64) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.sessions[userID], nil
}

type mockDidoxClient struct {
	timestampToken string
	timestampErr   error
	sessionKey     string
	loginErr       error
	documents      json.RawMessage
	documentsErr   error
	document       json.RawMessage
	documentErr    error

	loginTaxID     string
	loginTimestamp string
	loginLocale    string
	docsUserKey    string
	docsQuery      model.DocumentQuery
	docUserKey     string
	docID          string
}

func (m *mockDidoxClient) Timestamp(_ context.Context, _, _ string) (string, error) {
	return m.timestampToken, m.timestampErr
}

func (m *mockDidoxClient) Login(_ context.Context, taxID, timestampToken, locale string) (string, error) {
	m.loginTaxID = taxID
	m.loginTimestamp = timestampToken
	m.loginLocale = locale
	return m.sessionKey, m.loginErr
}

func (m *mockDidoxClient) GetDocuments(_ context.Context, userKey string, q model.DocumentQuery) (json.RawMessage, error) {
	m.docsUserKey = userKey
	m.docsQuery = q
	return m.documents, m.documentsErr
}

func (m *mockDidoxClient) GetDocument(_ context.Context, userKey, documentID string) (json.RawMessage, error) {
	m.docUserKey = userKey
	m.docID = documentID
	return m.document, m.documentErr
}

type mockRegosClient struct {
	result json.RawMessage
	err    error

	operation string
	payload   any
}

func (m *mockRegosClient) Call(_ context.Context, operation string, payload any) (json.RawMessage, error) {
	m.operation = operation
	m.payload = payload
	return m.result, m.err
}

type mockSigner struct {
	certs   []model.Certificate
	listErr error
	pkcs7   string
	sigHex  string
	signErr error

	signedData  string
	signedIndex int
}

func (m *mockSigner) ListCertificates(_ context.Context) ([]model.Certificate, error) {
	return m.certs, m.listErr
}

func (m *mockSigner) Sign(_ context.Context, dataB64 string, certIndex int) (string, string, error) {
	m.signedData = dataB64
	m.signedIndex = certIndex
	return m.pkcs7, m.sigHex, m.signErr
}
