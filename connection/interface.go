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

package connection

import (
	"sync"
	"time"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	"github.com/yohummus/yogi-core-go/branchinfo"
	"github.com/yohummus/yogi-core-go/executor"
	"github.com/yohummus/yogi-core-go/transport"
	"github.com/yohummus/yogi-core-go/transport/message"
)

// State of a connection. Transitions are strictly forward.
type State uint8

const (
	StateNew State = iota
	StateInfoExchange
	StateInfoExchanged
	StateAuthenticating
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInfoExchange:
		return "info-exchange"
	case StateInfoExchanged:
		return "info-exchanged"
	case StateAuthenticating:
		return "authenticating"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	}

	return "unknown"
}

// Callback reports the completion of one state machine step.
type Callback func(err liberr.Error)

// Connection drives one peer through handshake and session.
type Connection interface {
	// ExchangeInfo sends the local info record, reads the peer's one and
	// reports completion. On success Remote returns the peer record.
	ExchangeInfo(cb Callback)

	// Authenticate performs the challenge-response handshake. It must
	// only be called after a successful info exchange.
	Authenticate(cb Callback)

	// RunSession starts the message transport. onMsg receives every
	// session message in wire order, onTerm fires once when the session
	// dies.
	RunSession(onMsg message.Handler, onTerm Callback)

	// Remote returns the peer record once info exchange succeeded.
	Remote() *branchinfo.Remote

	// Session returns the message transport while the session runs.
	Session() message.Transport

	// SessionRunning reports whether the connection reached Running and
	// has not terminated.
	SessionRunning() bool

	// State returns the current lifecycle state.
	State() State

	// CreatedByInbound reports whether the listener accepted the
	// underlying transport.
	CreatedByInbound() bool

	// PeerDescription names the peer for diagnostics.
	PeerDescription() string

	// Close terminates the connection. Pending callbacks complete with
	// the transport's terminal error.
	Close()
}

// Options configure a connection.
type Options struct {
	// Executor provides the strand serializing this connection's
	// callbacks.
	Executor executor.Executor

	// TxQueueSize bounds the session send queue in bytes.
	TxQueueSize int

	// RxQueueSize bounds the session receive queue in bytes.
	RxQueueSize int

	// Timeout is the inactivity limit driving the heartbeat cadence.
	Timeout time.Duration

	// Logger supplies the diagnostics logger.
	Logger liblog.FuncLog
}

// New wraps an established transport. The handshake only starts with
// ExchangeInfo.
func New(tr transport.Transport, local *branchinfo.Local, opt Options) (Connection, liberr.Error) {
	if tr == nil || local == nil || opt.Executor == nil {
		return nil, ErrorParamEmpty.Error(nil)
	}

	return &cnx{
		tr:  tr,
		lcl: local,
		opt: opt,
		str: opt.Executor.NewStrand(),
	}, nil
}

var _ Connection = &cnx{}

type cnx struct {
	tr  transport.Transport
	lcl *branchinfo.Local
	opt Options
	str executor.Strand

	mux sync.Mutex
	stt State
	rmt *branchinfo.Remote
	ses message.Transport
}
