package auth

import (
	"fmt"
	"net/http"

	"k8s.io/client-go/transport"

	"github.com/novelcore/kubeclient/pkg/errors"
)

// NetLocation identifies one HTTPS server. It is the key used to select
// the right client certificate and trust root; selection is by exact
// host/port match.
type NetLocation struct {
	Host string
	Port int
}

func (n NetLocation) String() string {
	return fmt.Sprintf("%s:%d", n.Host, n.Port)
}

// ClientCertificatePolicy holds client certificates and trust roots keyed
// by server location and builds authenticated agents from them.
// Kubernetes servers commonly present self-signed certificates, so each
// location carries its own trust root rather than the system pool.
type ClientCertificatePolicy struct {
	credentials map[NetLocation]*TLSCredentials
	trustRoots  map[NetLocation][]byte
}

// NewClientCertificatePolicy creates an empty policy
func NewClientCertificatePolicy() *ClientCertificatePolicy {
	return &ClientCertificatePolicy{
		credentials: make(map[NetLocation]*TLSCredentials),
		trustRoots:  make(map[NetLocation][]byte),
	}
}

// PutCredentials registers client credentials for a server location
func (p *ClientCertificatePolicy) PutCredentials(loc NetLocation, creds *TLSCredentials) {
	p.credentials[loc] = creds
}

// PutTrustRoot registers the PEM certificate authority to trust for a
// server location
func (p *ClientCertificatePolicy) PutTrustRoot(loc NetLocation, caPEM []byte) {
	p.trustRoots[loc] = caPEM
}

// AgentFor builds an HTTP agent that authenticates to the given location
// with its registered client certificate and trusts its registered
// authority
func (p *ClientCertificatePolicy) AgentFor(loc NetLocation) (*http.Client, error) {
	creds, ok := p.credentials[loc]
	if !ok {
		return nil, errors.Newf(errors.ErrorCodeNoCredentials, "no credentials for %s", loc)
	}
	cfg := &transport.Config{
		TLS: transport.TLSConfig{
			CertData: creds.certPEM,
			KeyData:  creds.keyPEM,
			CAData:   p.trustRoots[loc],
		},
	}
	rt, err := transport.New(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorCodeInvalidCredentials, "cannot build TLS transport")
	}
	return &http.Client{Transport: rt}, nil
}

// BearerAgent builds an HTTP agent that injects the given bearer token
// into the Authorization header of every request
func BearerAgent(token string) (*http.Client, error) {
	rt, err := transport.New(&transport.Config{BearerToken: token})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorCodeInvalidCredentials, "cannot build bearer transport")
	}
	return &http.Client{Transport: rt}, nil
}
