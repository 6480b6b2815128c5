// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpfx

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bassosimone/errclass"
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
	"golang.org/x/net/http2"

	"code.hybscloud.com/aeon"
)

// Response is the result of a successful request.
type Response struct {
	Code int
	Body []byte
}

// Client performs HTTP requests, optionally pinning peer verification and
// a trusted certificate for every request it issues.
type Client struct {
	verifyPeer  *bool
	certificate *x509.Certificate
	logger      *slog.Logger
	transport   http.RoundTripper
}

// Builder starts a ClientBuilder.
func (Client) Builder() ClientBuilder {
	return ClientBuilder{}
}

// ClientBuilder accumulates Client options.
type ClientBuilder struct {
	client Client
}

func (b ClientBuilder) VerifyPeer(v bool) ClientBuilder {
	b.client.verifyPeer = &v
	return b
}

func (b ClientBuilder) Certificate(cert *x509.Certificate) ClientBuilder {
	b.client.certificate = cert
	return b
}

// Logger installs a structured logger. If never set, log records are
// discarded.
func (b ClientBuilder) Logger(l *slog.Logger) ClientBuilder {
	b.client.logger = l
	return b
}

func (b ClientBuilder) Build() Client {
	return b.client
}

func (c Client) logOrDiscard() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(slog.DiscardHandler)
}

// Do builds the leaf composable for req, applying the client-level
// verify-peer override and certificate default that req did not set
// itself.
func (c Client) Do(req Request) aeon.Composable[aeon.Unit, Response] {
	if c.verifyPeer != nil {
		req.verifyPeer = *c.verifyPeer
	}
	if req.certificate == nil {
		req.certificate = c.certificate
	}
	return func(down aeon.Continuation[Response]) aeon.Continuation[aeon.Unit] {
		return &httpK{client: c, req: req, down: down}
	}
}

// Get is a convenience wrapper over Do for a GET with no body.
func (c Client) Get(uri string, timeout time.Duration) aeon.Composable[aeon.Unit, Response] {
	req, _ := Request{}.Builder().URI(uri).Method(GET).Timeout(timeout).Build()
	return c.Do(req)
}

// Post is a convenience wrapper over Do for a form-encoded POST.
func (c Client) Post(uri string, fields []PostField, timeout time.Duration) aeon.Composable[aeon.Unit, Response] {
	req, _ := Request{}.Builder().URI(uri).Method(POST).Fields(fields).Timeout(timeout).Build()
	return c.Do(req)
}

// Get issues a GET with a zero-value Client.
func Get(uri string, timeout time.Duration) aeon.Composable[aeon.Unit, Response] {
	return Client{}.Get(uri, timeout)
}

// Post issues a form-encoded POST with a zero-value Client.
func Post(uri string, fields []PostField, timeout time.Duration) aeon.Composable[aeon.Unit, Response] {
	return Client{}.Post(uri, fields, timeout)
}

type httpK struct {
	client Client
	req    Request
	down   aeon.Continuation[Response]

	i           *aeon.Interrupt
	cancel      context.CancelFunc
	interrupted atomic.Bool
}

func (k *httpK) Start(aeon.Unit) {
	if k.i != nil && k.i.Triggered() {
		k.down.Stop()
		return
	}
	spanID := runtimex.PanicOnError1(uuid.NewV7()).String()
	logger := k.client.logOrDiscard().With("span_id", spanID)

	ctx := context.Background()
	if k.req.timeout > 0 {
		ctx, k.cancel = context.WithTimeout(ctx, k.req.timeout)
	} else {
		ctx, k.cancel = context.WithCancel(ctx)
	}
	if k.i != nil {
		k.i.Install(func() {
			k.interrupted.Store(true)
			k.cancel()
		})
	}

	httpReq, err := k.buildHTTPRequest(ctx)
	if err != nil {
		k.cancel()
		k.down.Fail(err)
		return
	}

	transport := k.client.transport
	if transport == nil {
		transport = k.newTransport()
	}

	logger.Info("http: request start", "method", httpReq.Method, "uri", httpReq.URL.String())
	start := time.Now()
	resp, err := transport.RoundTrip(httpReq)
	if err != nil {
		k.cancel()
		if k.interrupted.Load() {
			k.down.Stop()
			return
		}
		logger.Info("http: request failed", "error", errclass.New(err), "duration", time.Since(start))
		k.down.Fail(err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	k.cancel()
	if err != nil {
		if k.interrupted.Load() {
			k.down.Stop()
			return
		}
		logger.Info("http: read body failed", "error", errclass.New(err))
		k.down.Fail(err)
		return
	}
	logger.Info("http: request done", "code", resp.StatusCode, "duration", time.Since(start))
	k.down.Start(Response{Code: resp.StatusCode, Body: body})
}

func (k *httpK) buildHTTPRequest(ctx context.Context) (*http.Request, error) {
	method := http.MethodGet
	body := strings.NewReader(k.req.body)
	uri := k.req.uri
	if k.req.method == POST {
		method = http.MethodPost
		if len(k.req.fields) > 0 {
			values := url.Values{}
			for _, f := range k.req.fields {
				values.Add(f.Key, f.Value)
			}
			body = strings.NewReader(values.Encode())
		}
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, err
	}
	for _, h := range k.req.headers {
		httpReq.Header.Add(h.Name, h.Value)
	}
	if k.req.method == POST && len(k.req.fields) > 0 {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return httpReq, nil
}

// newTransport selects H2-over-TLS when possible via ALPN, otherwise falls
// back to the standard H1 transport.
func (k *httpK) newTransport() http.RoundTripper {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: !k.req.verifyPeer,
		NextProtos:         []string{"h2", "http/1.1"},
	}
	if k.req.certificate != nil {
		pool := x509.NewCertPool()
		pool.AddCert(k.req.certificate)
		tlsConfig.RootCAs = pool
	}
	h1 := &http.Transport{TLSClientConfig: tlsConfig}
	// ConfigureTransports registers the H2 round-tripper in h1's TLSNextProto
	// table; connections whose ALPN negotiated "h2" upgrade transparently,
	// and on error h1 still serves as a plain H1 transport.
	if _, err := http2.ConfigureTransports(h1); err != nil {
		return h1
	}
	return h1
}

func (k *httpK) Fail(err error) { k.down.Fail(err) }
func (k *httpK) Stop() {
	if k.cancel != nil {
		k.cancel()
	}
	k.down.Stop()
}

// Register only records i; the actual handler is installed from Start once
// k.cancel exists, and Start itself checks i.Triggered() first so an
// interrupt fired before Start still yields Stop instead of being silently
// absorbed by a no-op handler.
func (k *httpK) Register(i *aeon.Interrupt) { k.i = i }
