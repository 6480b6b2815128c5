// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tcpfx provides the TCP socket leaf composable: Open, Bind,
// Connect, Shutdown and Close, each an aeon.Composable over a small
// explicit state machine. Cancellation closes the in-flight connection
// rather than abandoning it.
package tcpfx

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"code.hybscloud.com/aeon"
)

// ShutdownType selects which half of the connection Shutdown closes.
type ShutdownType int

const (
	Send ShutdownType = iota
	Receive
	Both
)

var (
	// ErrAlreadyOpen is returned by Open on an already-opened socket.
	ErrAlreadyOpen = errors.New("tcpfx: socket is already opened")
	// ErrClosed is returned by Bind, Connect, Shutdown and Close on a
	// socket that is not open.
	ErrClosed = errors.New("tcpfx: socket is closed")
	// ErrAlreadyConnected is returned by Connect on a connected socket.
	ErrAlreadyConnected = errors.New("tcpfx: socket is already connected")
	// ErrBindWhileConnected is returned by Bind once Connect has succeeded.
	ErrBindWhileConnected = errors.New("tcpfx: bind is forbidden while socket is connected")
)

// Socket is a TCP socket state machine driven entirely through the
// continuation protocol: every operation is a leaf composable rather than
// a blocking method.
type Socket struct {
	mu        sync.Mutex
	open      atomic.Bool
	connected bool
	bound     *net.TCPAddr
	conn      *net.TCPConn
}

// NewSocket creates an unopened socket.
func NewSocket() *Socket {
	return &Socket{}
}

// IsOpen reports whether Open has succeeded and Close has not yet run.
func (s *Socket) IsOpen() bool { return s.open.Load() }

// Open marks the socket as open. Go's net package lazily creates the file
// descriptor on Bind/Connect rather than on an explicit open() syscall, so
// Open only flips the state-machine flag that Bind, Connect and Shutdown
// check.
func Open(s *Socket) aeon.Composable[aeon.Unit, aeon.Unit] {
	return func(down aeon.Continuation[aeon.Unit]) aeon.Continuation[aeon.Unit] {
		return &openK{s: s, down: down}
	}
}

type openK struct {
	s    *Socket
	down aeon.Continuation[aeon.Unit]
}

func (k *openK) Start(aeon.Unit) {
	if !k.s.open.CompareAndSwap(false, true) {
		k.down.Fail(ErrAlreadyOpen)
		return
	}
	k.down.Start(aeon.Unit{})
}
func (k *openK) Fail(err error)           { k.down.Fail(err) }
func (k *openK) Stop()                    { k.down.Stop() }
func (k *openK) Register(*aeon.Interrupt) {}

// Bind reserves ip:port as the socket's local address. Forbidden once the
// socket is connected.
func Bind(s *Socket, ip string, port uint16) aeon.Composable[aeon.Unit, aeon.Unit] {
	return func(down aeon.Continuation[aeon.Unit]) aeon.Continuation[aeon.Unit] {
		return &bindK{s: s, ip: ip, port: port, down: down}
	}
}

type bindK struct {
	s    *Socket
	ip   string
	port uint16
	down aeon.Continuation[aeon.Unit]
}

func (k *bindK) Start(aeon.Unit) {
	if !k.s.IsOpen() {
		k.down.Fail(ErrClosed)
		return
	}
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	if k.s.connected {
		k.down.Fail(ErrBindWhileConnected)
		return
	}
	addr := &net.TCPAddr{IP: net.ParseIP(k.ip), Port: int(k.port)}
	k.s.bound = addr
	k.down.Start(aeon.Unit{})
}
func (k *bindK) Fail(err error)           { k.down.Fail(err) }
func (k *bindK) Stop()                    { k.down.Stop() }
func (k *bindK) Register(*aeon.Interrupt) {}

// Connect dials ip:port. Interrupting before the dial starts yields Stop
// immediately. Interrupting mid-dial also yields Stop at once, but does not
// cancel the dial itself: it runs to completion, and the connection it
// produces, if any, is then closed instead of being kept.
func Connect(s *Socket, ip string, port uint16) aeon.Composable[aeon.Unit, aeon.Unit] {
	return func(down aeon.Continuation[aeon.Unit]) aeon.Continuation[aeon.Unit] {
		return &connectK{s: s, ip: ip, port: port, down: down}
	}
}

type connectK struct {
	s    *Socket
	ip   string
	port uint16
	down aeon.Continuation[aeon.Unit]

	mu        sync.Mutex
	started   bool
	completed bool
}

func (k *connectK) Start(aeon.Unit) {
	k.mu.Lock()
	if k.completed {
		k.mu.Unlock()
		return
	}
	if !k.s.IsOpen() {
		k.completed = true
		k.mu.Unlock()
		k.down.Fail(ErrClosed)
		return
	}
	k.s.mu.Lock()
	if k.s.connected {
		k.s.mu.Unlock()
		k.completed = true
		k.mu.Unlock()
		k.down.Fail(ErrAlreadyConnected)
		return
	}
	k.s.mu.Unlock()
	k.started = true
	k.mu.Unlock()

	var dialer net.Dialer
	if k.s.bound != nil {
		dialer.LocalAddr = k.s.bound
	}
	conn, err := dialer.Dial("tcp", net.JoinHostPort(k.ip, strconv.Itoa(int(k.port))))

	k.mu.Lock()
	if k.completed {
		k.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	k.completed = true
	k.mu.Unlock()

	if err != nil {
		k.down.Fail(err)
		return
	}
	k.s.mu.Lock()
	k.s.conn = conn.(*net.TCPConn)
	k.s.connected = true
	k.s.mu.Unlock()
	k.down.Start(aeon.Unit{})
}

func (k *connectK) Fail(err error) { k.down.Fail(err) }
func (k *connectK) Stop()          { k.down.Stop() }
func (k *connectK) Register(i *aeon.Interrupt) {
	i.Install(func() {
		k.mu.Lock()
		defer k.mu.Unlock()
		if !k.started {
			if !k.completed {
				k.completed = true
				k.down.Stop()
			}
			return
		}
		if k.completed {
			return
		}
		k.completed = true
		k.s.mu.Lock()
		conn := k.s.conn
		k.s.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		k.down.Stop()
	})
}

// Shutdown closes one or both halves of the connection without fully
// releasing the socket.
func Shutdown(s *Socket, t ShutdownType) aeon.Composable[aeon.Unit, aeon.Unit] {
	return func(down aeon.Continuation[aeon.Unit]) aeon.Continuation[aeon.Unit] {
		return &shutdownK{s: s, t: t, down: down}
	}
}

type shutdownK struct {
	s    *Socket
	t    ShutdownType
	down aeon.Continuation[aeon.Unit]
}

func (k *shutdownK) Start(aeon.Unit) {
	if !k.s.IsOpen() {
		k.down.Fail(ErrClosed)
		return
	}
	k.s.mu.Lock()
	conn := k.s.conn
	k.s.mu.Unlock()
	if conn == nil {
		k.down.Fail(ErrClosed)
		return
	}
	var err error
	switch k.t {
	case Send:
		err = conn.CloseWrite()
	case Receive:
		err = conn.CloseRead()
	case Both:
		err = conn.Close()
	}
	if err != nil {
		k.down.Fail(err)
		return
	}
	k.down.Start(aeon.Unit{})
}
func (k *shutdownK) Fail(err error)           { k.down.Fail(err) }
func (k *shutdownK) Stop()                    { k.down.Stop() }
func (k *shutdownK) Register(*aeon.Interrupt) {}

// Close releases the socket fully, the counterpart to Open. Safe to call
// even if Connect was never attempted.
func Close(s *Socket) aeon.Composable[aeon.Unit, aeon.Unit] {
	return func(down aeon.Continuation[aeon.Unit]) aeon.Continuation[aeon.Unit] {
		return &closeK{s: s, down: down}
	}
}

type closeK struct {
	s    *Socket
	down aeon.Continuation[aeon.Unit]
}

func (k *closeK) Start(aeon.Unit) {
	if !k.s.open.CompareAndSwap(true, false) {
		k.down.Fail(ErrClosed)
		return
	}
	k.s.mu.Lock()
	conn := k.s.conn
	k.s.conn = nil
	k.s.connected = false
	k.s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	k.down.Start(aeon.Unit{})
}
func (k *closeK) Fail(err error)           { k.down.Fail(err) }
func (k *closeK) Stop()                    { k.down.Stop() }
func (k *closeK) Register(*aeon.Interrupt) {}
