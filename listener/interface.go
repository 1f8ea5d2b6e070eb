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

package listener

import (
	"context"
	"net"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	libptc "github.com/nabbar/golib/network/protocol"
	librun "github.com/nabbar/golib/runner/startStop"
)

// AcceptHandler receives each newly accepted socket. The handler owns
// the connection.
type AcceptHandler func(conn net.Conn)

// Listener is a single TCP acceptor whose chosen port is known from
// creation time.
type Listener interface {
	// Port returns the bound TCP port.
	Port() uint16

	// Addr returns the bound socket address.
	Addr() net.Addr

	// Start begins accepting connections.
	Start(ctx context.Context) error

	// Stop closes the acceptor.
	Stop(ctx context.Context) error

	// IsRunning reports whether the accept loop is active.
	IsRunning() bool

	// Done is closed when the accept loop has terminated, normally or
	// after a terminal accept failure.
	Done() <-chan struct{}
}

// New binds the acceptor. With port zero the kernel chooses an ephemeral
// port. allow restricts the acceptor to connections arriving on the
// given local addresses (the addresses of the configured interfaces);
// an empty list accepts on every interface. The handler must not be
// nil.
func New(allow []net.IP, port uint16, h AcceptHandler, fct liblog.FuncLog) (Listener, liberr.Error) {
	if h == nil {
		return nil, ErrorParamEmpty.Error(nil)
	}

	lis, err := net.Listen(libptc.NetworkTCP.Code(), addrAnyWithPort(port))
	if err != nil {
		return nil, ErrorListenFailed.Error(err)
	}

	l := &lsn{
		lis: lis,
		alw: allow,
		hdl: h,
		log: fct,
		dne: make(chan struct{}),
	}

	l.run = librun.New(l.runStart, l.runStop)
	return l, nil
}

func addrAnyWithPort(port uint16) string {
	if port == 0 {
		return ":0"
	}

	return net.JoinHostPort("", portString(port))
}
