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

package fabric

import (
	"sync"

	"github.com/google/uuid"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	"github.com/yohummus/yogi-core-go/connection"
	"github.com/yohummus/yogi-core-go/executor"
	"github.com/yohummus/yogi-core-go/manager"
	"github.com/yohummus/yogi-core-go/payload"
	"github.com/yohummus/yogi-core-go/transport/message"
)

// SendCallback reports the summary result of one broadcast.
type SendCallback func(err liberr.Error)

// ReceiveCallback reports one delivered broadcast: the source branch and
// the number of bytes written into the caller's buffer.
type ReceiveCallback func(err liberr.Error, source uuid.UUID, n int)

// Fabric is the per-branch broadcast plane.
type Fabric interface {
	// SendBroadcastAsync validates data, converts it to the wire
	// encoding and hands it to every running session. The callback fires
	// exactly once with the summary result.
	SendBroadcastAsync(data []byte, enc payload.Encoding, retry bool, cb SendCallback) (manager.OperationID, liberr.Error)

	// SendBroadcast is the blocking variant of SendBroadcastAsync.
	SendBroadcast(data []byte, enc payload.Encoding, retry bool) liberr.Error

	// CancelSendBroadcast cancels the pending per-session sends of one
	// operation. Cancelling a completed operation fails with an
	// invalid-operation-id error.
	CancelSendBroadcast(id manager.OperationID) liberr.Error

	// ReceiveBroadcastAsync arms the single receive slot. A second call
	// before delivery cancels the first with a canceled error.
	ReceiveBroadcastAsync(enc payload.Encoding, buf []byte, cb ReceiveCallback)

	// CancelReceiveBroadcast clears the receive slot. It reports whether
	// a pending callback was canceled.
	CancelReceiveBroadcast() bool

	// OnMessage consumes one session message; the branch wires this into
	// the manager's message handler.
	OnMessage(msg []byte, conn connection.Connection)

	// Close cancels every pending operation with a canceled error.
	Close()
}

// New builds the fabric on top of a manager.
func New(m manager.Manager, exe executor.Executor, fct liblog.FuncLog) (Fabric, liberr.Error) {
	if m == nil || exe == nil {
		return nil, ErrorParamEmpty.Error(nil)
	}

	return &fbr{
		mgr: m,
		str: exe.NewStrand(),
		log: fct,
		ops: make(map[manager.OperationID]*sendBroadcastOp),
	}, nil
}

var _ Fabric = &fbr{}

type fbr struct {
	mgr manager.Manager
	str executor.Strand
	log liblog.FuncLog

	mux sync.Mutex
	ops map[manager.OperationID]*sendBroadcastOp
	rcv *receiveSlot
	cls bool
}

// sendBroadcastOp tracks the fan-out of one broadcast.
type sendBroadcastOp struct {
	id      manager.OperationID
	pending int
	err     liberr.Error
	cb      SendCallback

	// per-session operation ids, for cancellation
	parts map[message.Transport]message.OperationID
}

type receiveSlot struct {
	enc payload.Encoding
	buf []byte
	cb  ReceiveCallback
}
