package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/novelcore/kubeclient/pkg/errors"
)

type testCert struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
	pem  []byte
}

// issueCert creates a certificate signed by parent, or self-signed when
// parent is nil.
func issueCert(t *testing.T, cn string, serial int64, parent *testCert, isCA bool) testCert {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(serial),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  isCA,
		BasicConstraintsValid: true,
	}
	signerCert, signerKey := template, key
	if parent != nil {
		signerCert, signerKey = parent.cert, parent.key
	}
	der, err := x509.CreateCertificate(rand.Reader, template, signerCert, &key.PublicKey, signerKey)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return testCert{
		cert: cert,
		key:  key,
		pem:  pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
	}
}

func keyPEM(t *testing.T, key *ecdsa.PrivateKey) []byte {
	t.Helper()
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
}

func TestValidateChain(t *testing.T) {
	root := issueCert(t, "root", 1, nil, true)
	intermediate := issueCert(t, "intermediate", 2, &root, true)
	leaf := issueCert(t, "leaf", 3, &intermediate, false)

	// Leaf first, each issued by the next.
	err := ValidateChain([]*x509.Certificate{leaf.cert, intermediate.cert, root.cert})
	assert.NoError(t, err)

	// Any other ordering breaks the issuer/subject linkage.
	err = ValidateChain([]*x509.Certificate{leaf.cert, root.cert, intermediate.cert})
	assert.True(t, kerrors.IsErrorCode(err, kerrors.ErrorCodeInvalidCredentials))

	err = ValidateChain(nil)
	assert.True(t, kerrors.IsErrorCode(err, kerrors.ErrorCodeInvalidCredentials))

	// A single self-signed certificate is a valid chain.
	assert.NoError(t, ValidateChain([]*x509.Certificate{root.cert}))
}

func TestNewTLSCredentials(t *testing.T) {
	root := issueCert(t, "root", 1, nil, true)
	leaf := issueCert(t, "leaf", 2, &root, false)

	chainPEM := append(append([]byte(nil), leaf.pem...), root.pem...)
	creds, err := NewTLSCredentials(chainPEM, keyPEM(t, leaf.key))
	require.NoError(t, err)
	assert.Equal(t, "leaf", creds.Leaf().Subject.CommonName)
	assert.Len(t, creds.Chain(), 2)

	// The returned chain is a copy.
	creds.Chain()[0] = nil
	assert.Equal(t, "leaf", creds.Leaf().Subject.CommonName)

	_, err = NewTLSCredentials([]byte("not pem"), keyPEM(t, leaf.key))
	assert.True(t, kerrors.IsErrorCode(err, kerrors.ErrorCodeInvalidCredentials))

	_, err = NewTLSCredentials(chainPEM, []byte("not pem"))
	assert.True(t, kerrors.IsErrorCode(err, kerrors.ErrorCodeInvalidCredentials))

	// An out-of-order chain is rejected at construction.
	other := issueCert(t, "other-root", 3, nil, true)
	badChain := append(append([]byte(nil), leaf.pem...), other.pem...)
	_, err = NewTLSCredentials(badChain, keyPEM(t, leaf.key))
	assert.True(t, kerrors.IsErrorCode(err, kerrors.ErrorCodeInvalidCredentials))
}

func TestPolicySelectsByLocation(t *testing.T) {
	root := issueCert(t, "root", 1, nil, true)
	leaf := issueCert(t, "leaf", 2, &root, false)
	creds, err := NewTLSCredentials(leaf.pem, keyPEM(t, leaf.key))
	require.NoError(t, err)

	policy := NewClientCertificatePolicy()
	known := NetLocation{Host: "example.invalid", Port: 6443}
	policy.PutCredentials(known, creds)
	policy.PutTrustRoot(known, root.pem)

	agent, err := policy.AgentFor(known)
	require.NoError(t, err)
	assert.NotNil(t, agent)

	// Selection is by exact host/port match.
	_, err = policy.AgentFor(NetLocation{Host: "example.invalid", Port: 443})
	assert.True(t, kerrors.IsErrorCode(err, kerrors.ErrorCodeNoCredentials))
}

func TestNetLocationString(t *testing.T) {
	assert.Equal(t, "example.invalid:6443", NetLocation{Host: "example.invalid", Port: 6443}.String())
}

func TestBearerAgent(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		seen = req.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	agent, err := BearerAgent("sekret")
	require.NoError(t, err)

	resp, err := agent.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck // test

	assert.Equal(t, "Bearer sekret", seen)
}
