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

package message

import (
	"sync"
	"time"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	"github.com/yohummus/yogi-core-go/executor"
	"github.com/yohummus/yogi-core-go/transport"
)

// OperationID identifies one in-flight send. Ids are positive and unique
// across the in-flight operations of one transport.
type OperationID int32

// Handler consumes one received message body in wire order.
type Handler func(msg []byte)

// ErrHandler reports the death of the transport, exactly once.
type ErrHandler func(err liberr.Error)

// SendCallback reports the outcome of one SendAsync.
type SendCallback func(err liberr.Error)

// Transport exchanges whole messages over a framed transport.
type Transport interface {
	// Start spawns the read, write and delivery loops. onMessage receives
	// every non-heartbeat message in wire order; onDead fires once when
	// the underlying transport dies.
	Start(onMessage Handler, onDead ErrHandler)

	// SendAsync queues msg atomically. With retry the operation parks
	// until queue space frees up; without it the callback completes with
	// a queue-full error when msg does not fit. The callback always fires
	// exactly once.
	SendAsync(msg []byte, retry bool, cb SendCallback) OperationID

	// CancelSend cancels a parked send. The canceled callback completes
	// with a canceled error; cancelling a completed operation fails with
	// an invalid-operation-id error.
	CancelSend(id OperationID) liberr.Error

	// Failed is closed once the transport is dead.
	Failed() <-chan struct{}

	// Err returns the terminal error, nil while alive.
	Err() liberr.Error

	// Close kills the transport and completes every parked operation
	// with a canceled error.
	Close()
}

// Options configure a message transport.
type Options struct {
	// TxQueueSize bounds the send queue in bytes.
	TxQueueSize int

	// RxQueueSize bounds the receive queue in bytes.
	RxQueueSize int

	// Timeout is the connection inactivity limit; heartbeats are sent at
	// half this period. Zero selects a conservative fallback cadence so
	// that disabling the watchdog never disables heartbeating.
	Timeout time.Duration

	// Strand, when set, runs every callback and delivery handler on the
	// given strand instead of the internal goroutines.
	Strand executor.Strand

	// Logger supplies the logger used for framing diagnostics.
	Logger liblog.FuncLog
}

// heartbeatFallback stands in for the timeout when the watchdog is
// disabled; heartbeats then go out at half of it.
const heartbeatFallback = 3 * time.Second

// New wraps a framed transport. Start must be called before any send.
func New(tr transport.Transport, opt Options) Transport {
	hb := opt.Timeout / 2
	if hb <= 0 {
		hb = heartbeatFallback / 2
	}

	return &mtr{
		tr:  tr,
		hbi: hb,
		str: opt.Strand,
		log: opt.Logger,
		txq: newFrameQueue(opt.TxQueueSize),
		rxq: newFrameQueue(opt.RxQueueSize),
		wke: make(chan struct{}, 1),
		rdy: make(chan struct{}, 1),
	}
}

var _ Transport = &mtr{}

type mtr struct {
	tr  transport.Transport
	hbi time.Duration
	str executor.Strand
	log liblog.FuncLog

	mux sync.Mutex
	txq *frameQueue
	rxq *frameQueue
	prk []*sendOp
	lid OperationID

	onMsg  Handler
	onDead ErrHandler
	once   sync.Once

	wke chan struct{}
	rdy chan struct{}
}

type sendOp struct {
	id    OperationID
	frame []byte
	cb    SendCallback
}
