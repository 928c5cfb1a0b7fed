// Package auth supplies authenticated HTTP agents for talking to API
// servers: TLS client-certificate agents selected by exact host/port
// match, or bearer-token agents. Certificate chains are validated at
// construction time.
package auth

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"

	"github.com/novelcore/kubeclient/pkg/errors"
)

// TLSCredentials holds a client certificate chain and its private key,
// both in PEM form. The chain is validated at construction: it must be
// non-empty and each certificate's issuer must be the subject of the next
// certificate in the chain.
type TLSCredentials struct {
	chain   []*x509.Certificate
	certPEM []byte
	keyPEM  []byte
}

// NewTLSCredentials parses and validates a client certificate chain and
// private key
func NewTLSCredentials(certPEM, keyPEM []byte) (*TLSCredentials, error) {
	chain, err := parseCertificates(certPEM)
	if err != nil {
		return nil, err
	}
	if err := ValidateChain(chain); err != nil {
		return nil, err
	}
	if block, _ := pem.Decode(keyPEM); block == nil {
		return nil, errors.New(errors.ErrorCodeInvalidCredentials, "no PEM data in private key")
	}
	return &TLSCredentials{chain: chain, certPEM: certPEM, keyPEM: keyPEM}, nil
}

// Leaf returns the end-entity certificate
func (c *TLSCredentials) Leaf() *x509.Certificate {
	return c.chain[0]
}

// Chain returns the validated certificate chain, leaf first
func (c *TLSCredentials) Chain() []*x509.Certificate {
	return append([]*x509.Certificate(nil), c.chain...)
}

func parseCertificates(certPEM []byte) ([]*x509.Certificate, error) {
	var chain []*x509.Certificate
	rest := certPEM
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorCodeInvalidCredentials, "cannot parse certificate")
		}
		chain = append(chain, cert)
	}
	if len(chain) == 0 {
		return nil, errors.New(errors.ErrorCodeInvalidCredentials, "no certificates in PEM data")
	}
	return chain, nil
}

// ValidateChain checks the issuer/subject linkage of a certificate chain
// ordered leaf first: chain[i] must be issued by chain[i+1]. An empty
// chain is rejected.
func ValidateChain(chain []*x509.Certificate) error {
	if len(chain) == 0 {
		return errors.New(errors.ErrorCodeInvalidCredentials, "empty certificate chain")
	}
	for i := 0; i < len(chain)-1; i++ {
		if !bytes.Equal(chain[i].RawIssuer, chain[i+1].RawSubject) {
			return errors.Newf(errors.ErrorCodeInvalidCredentials,
				"certificate %q is issued by %q, but the next certificate in the chain is %q",
				chain[i].Subject, chain[i].Issuer, chain[i+1].Subject)
		}
	}
	return nil
}
