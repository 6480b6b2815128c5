// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpfx

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
)

// ParseCertificate decodes a single PEM-encoded certificate. PEM
// encode/decode is kept separate from the TLS configuration itself so a
// non-stdlib TLS engine could be swapped in later without touching the
// request leaf.
func ParseCertificate(pemBytes []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, errors.New("httpfx: no PEM-encoded certificate found")
	}
	return x509.ParseCertificate(block.Bytes)
}

// EncodeCertificate PEM-encodes cert, the inverse of ParseCertificate.
func EncodeCertificate(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
}
