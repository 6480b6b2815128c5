// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpfx_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/aeon/transport/httpfx"
)

func newSelfSignedCert(t *testing.T) *x509.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate: %v", err)
	}
	return cert
}

func TestEncodeParseCertificateRoundTrip(t *testing.T) {
	cert := newSelfSignedCert(t)
	encoded := httpfx.EncodeCertificate(cert)
	decoded, err := httpfx.ParseCertificate(encoded)
	require.NoError(t, err)
	require.Zero(t, decoded.SerialNumber.Cmp(cert.SerialNumber), "round-tripped certificate has a different serial number")
}

func TestParseCertificateRejectsGarbage(t *testing.T) {
	_, err := httpfx.ParseCertificate([]byte("not pem"))
	require.Error(t, err)
}
