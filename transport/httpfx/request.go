// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package httpfx provides the URL/HTTP leaf composable: build a Request,
// express it as an aeon.Composable via a Client, and observe Response or
// failure through the ordinary continuation protocol.
package httpfx

import (
	"crypto/x509"
	"time"
)

// Method is the HTTP method a Request uses.
type Method int

const (
	GET Method = iota
	POST
)

// PostField is one application/x-www-form-urlencoded key/value pair.
type PostField struct {
	Key   string
	Value string
}

// Header is one request header field. Kept as an ordered list rather than a
// map: a map would both drop duplicate header names and randomize send
// order.
type Header struct {
	Name  string
	Value string
}

// Request is an immutable, built HTTP request description. Construct one
// via Request.Builder().
type Request struct {
	uri         string
	method      Method
	headers     []Header
	body        string
	timeout     time.Duration
	fields      []PostField
	verifyPeer  bool
	certificate *x509.Certificate
}

func (r Request) URI() string                    { return r.uri }
func (r Request) MethodValue() Method            { return r.method }
func (r Request) Headers() []Header              { return r.headers }
func (r Request) Body() string                   { return r.body }
func (r Request) Timeout() time.Duration         { return r.timeout }
func (r Request) Fields() []PostField            { return r.fields }
func (r Request) VerifyPeer() bool               { return r.verifyPeer }
func (r Request) Certificate() *x509.Certificate { return r.certificate }

// Builder starts a RequestBuilder with verifyPeer defaulted to true.
func (Request) Builder() RequestBuilder {
	return RequestBuilder{req: Request{verifyPeer: true}}
}

// RequestBuilder accumulates Request fields. Build reports a missing URI as
// an ordinary error, checked the one place it can be: at Build time.
type RequestBuilder struct {
	req Request
}

func (b RequestBuilder) URI(uri string) RequestBuilder {
	b.req.uri = uri
	return b
}

func (b RequestBuilder) Method(m Method) RequestBuilder {
	b.req.method = m
	return b
}

func (b RequestBuilder) Timeout(d time.Duration) RequestBuilder {
	b.req.timeout = d
	return b
}

func (b RequestBuilder) Fields(fields []PostField) RequestBuilder {
	b.req.fields = fields
	return b
}

// Headers sets the request's ordered header list, replacing any previously
// set. Callers wanting to add incrementally can read Request.Headers() back
// off a partially-built RequestBuilder via a prior Build, or just construct
// the full ordered slice up front.
func (b RequestBuilder) Headers(headers []Header) RequestBuilder {
	b.req.headers = headers
	return b
}

// AddHeader appends one header, preserving insertion order and allowing the
// same name to repeat.
func (b RequestBuilder) AddHeader(name, value string) RequestBuilder {
	b.req.headers = append(b.req.headers, Header{Name: name, Value: value})
	return b
}

func (b RequestBuilder) Body(body string) RequestBuilder {
	b.req.body = body
	return b
}

// VerifyPeer controls TLS peer verification for https:// requests.
func (b RequestBuilder) VerifyPeer(v bool) RequestBuilder {
	b.req.verifyPeer = v
	return b
}

// Certificate pins a CA certificate to verify the peer against, the
// equivalent of curl's --cacert.
func (b RequestBuilder) Certificate(cert *x509.Certificate) RequestBuilder {
	b.req.certificate = cert
	return b
}

// Build finalizes the request. Returns an error if URI is empty.
func (b RequestBuilder) Build() (Request, error) {
	if b.req.uri == "" {
		return Request{}, errMissingURI
	}
	return b.req, nil
}
