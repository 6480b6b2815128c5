// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpfx_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bassosimone/slogstub"

	"code.hybscloud.com/aeon"
	"code.hybscloud.com/aeon/transport/httpfx"
)

// newCapturingLogger builds a slogstub.FuncHandler that appends every
// emitted record so a test can assert on which structured log events a
// leaf produced.
func newCapturingLogger() (*slog.Logger, *[]slog.Record) {
	var records []slog.Record
	handler := &slogstub.FuncHandler{
		EnabledFunc: func(context.Context, slog.Level) bool { return true },
		HandleFunc: func(_ context.Context, record slog.Record) error {
			records = append(records, record)
			return nil
		},
	}
	handler.WithAttrsFunc = func([]slog.Attr) slog.Handler { return handler }
	handler.WithGroupFunc = func(string) slog.Handler { return handler }
	return slog.New(handler), &records
}

func TestClientGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := httpfx.Client{}.Builder().Build()
	comp := c.Get(srv.URL, 5*time.Second)
	f, start := aeon.Terminate(comp)
	start.Start(aeon.Unit{})
	resp, err := f.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("got code %d, want %d", resp.Code, http.StatusOK)
	}
	if string(resp.Body) != "hello" {
		t.Fatalf("got body %q, want %q", resp.Body, "hello")
	}
}

func TestClientPostSendsFields(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotBody = r.FormValue("key")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	comp := httpfx.Post(srv.URL, []httpfx.PostField{{Key: "key", Value: "value"}}, 5*time.Second)
	f, start := aeon.Terminate(comp)
	start.Start(aeon.Unit{})
	resp, err := f.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Code != http.StatusCreated {
		t.Fatalf("got code %d, want %d", resp.Code, http.StatusCreated)
	}
	if gotBody != "value" {
		t.Fatalf("got form field %q, want %q", gotBody, "value")
	}
}

func TestClientLogsStructuredRequestEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger, records := newCapturingLogger()
	c := httpfx.Client{}.Builder().Logger(logger).Build()
	f, start := aeon.Terminate(c.Get(srv.URL, 5*time.Second))
	start.Start(aeon.Unit{})
	if _, err := f.Get(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gotStart, gotDone bool
	for _, r := range *records {
		switch r.Message {
		case "http: request start":
			gotStart = true
		case "http: request done":
			gotDone = true
		}
	}
	if !gotStart || !gotDone {
		t.Fatalf("got start=%v done=%v, want both true", gotStart, gotDone)
	}
}

func TestClientFailsOnUnreachableHost(t *testing.T) {
	comp := httpfx.Get("http://127.0.0.1:1", 200*time.Millisecond)
	f, start := aeon.Terminate(comp)
	start.Start(aeon.Unit{})
	_, err := f.Get()
	if err == nil {
		t.Fatal("expected an error for an unreachable host")
	}
}

type recordingHTTPK struct {
	done chan error
}

func (k *recordingHTTPK) Start(httpfx.Response)    { k.done <- nil }
func (k *recordingHTTPK) Fail(err error)           { k.done <- err }
func (k *recordingHTTPK) Stop()                    { k.done <- aeon.ErrStopped }
func (k *recordingHTTPK) Register(*aeon.Interrupt) {}

func TestClientInterruptBeforeStartYieldsStop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	comp := httpfx.Get(srv.URL, 5*time.Second)
	rec := &recordingHTTPK{done: make(chan error, 1)}
	var i aeon.Interrupt
	up := comp(rec)
	up.Register(&i)
	i.Trigger()
	up.Start(aeon.Unit{})

	if err := <-rec.done; err != aeon.ErrStopped {
		t.Fatalf("got %v, want ErrStopped", err)
	}
}

func TestClientInterruptMidFlightYieldsStop(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	comp := httpfx.Get(srv.URL, 5*time.Second)
	rec := &recordingHTTPK{done: make(chan error, 1)}
	var i aeon.Interrupt
	up := comp(rec)
	up.Register(&i)
	go func() {
		time.Sleep(50 * time.Millisecond)
		i.Trigger()
	}()
	up.Start(aeon.Unit{})

	if err := <-rec.done; err != aeon.ErrStopped {
		t.Fatalf("got %v, want ErrStopped", err)
	}
}
