/*
 * MIT License
 *
 * Copyright (c) 2024 Johannes Bergmann
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package transport

import (
	"context"
	"net"
	"sync"
	"time"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	libptc "github.com/nabbar/golib/network/protocol"
)

// Transport is a reliable bidirectional byte stream over one TCP socket.
// It is safe to use one reader and one writer concurrently; concurrent
// readers or concurrent writers serialize on an internal mutex.
type Transport interface {
	// ReadFull fills p completely or fails.
	ReadFull(p []byte) liberr.Error

	// WriteFull writes p completely or fails.
	WriteFull(p []byte) liberr.Error

	// PeerAddr returns the remote socket address.
	PeerAddr() net.Addr

	// CreatedByInbound reports whether the listener accepted this
	// transport (as opposed to a local dial).
	CreatedByInbound() bool

	// Failed is closed once the transport is dead.
	Failed() <-chan struct{}

	// Err returns the error that killed the transport, nil while alive.
	Err() liberr.Error

	// Close fails the transport with a canceled error and releases the
	// socket. Closing a dead transport is a no-op.
	Close() error
}

// Options configure a transport.
type Options struct {
	// Timeout is the inactivity limit in either direction. Zero disables
	// the watchdog.
	Timeout time.Duration

	// ByteLimit caps one socket transfer. Zero means unlimited.
	ByteLimit int

	// Logger supplies the logger used for transport level diagnostics.
	Logger liblog.FuncLog
}

// New wraps an established socket.
func New(conn net.Conn, inbound bool, opt Options) Transport {
	t := &tcp{
		con: conn,
		inb: inbound,
		lim: opt.ByteLimit,
		tmo: opt.Timeout,
		log: opt.Logger,
		dne: make(chan struct{}),
	}

	if t.tmo > 0 {
		t.wdg = time.AfterFunc(t.tmo, t.onTimeout)
	}

	return t
}

// Dial establishes an outbound transport. The connect attempt itself is
// bounded by the configured timeout.
func Dial(ctx context.Context, addr string, opt Options) (Transport, liberr.Error) {
	if addr == "" {
		return nil, ErrorParamEmpty.Error(nil)
	}

	d := net.Dialer{Timeout: opt.Timeout}

	con, err := d.DialContext(ctx, libptc.NetworkTCP.Code(), addr)
	if err != nil {
		return nil, ErrorConnectFailed.Error(err)
	}

	return New(con, false, opt), nil
}

var _ Transport = &tcp{}

type tcp struct {
	con net.Conn
	inb bool
	lim int
	tmo time.Duration
	log liblog.FuncLog

	rdm sync.Mutex
	wrm sync.Mutex

	onc sync.Once
	dne chan struct{}
	err liberr.Error
	wdg *time.Timer
}
