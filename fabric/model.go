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
	"github.com/google/uuid"

	liberr "github.com/nabbar/golib/errors"
	loglvl "github.com/nabbar/golib/logger/level"

	"github.com/yohummus/yogi-core-go/connection"
	"github.com/yohummus/yogi-core-go/manager"
	"github.com/yohummus/yogi-core-go/payload"
	"github.com/yohummus/yogi-core-go/protocol"
	"github.com/yohummus/yogi-core-go/transport/message"
)

func (f *fbr) SendBroadcastAsync(data []byte, enc payload.Encoding, retry bool, cb SendCallback) (manager.OperationID, liberr.Error) {
	raw, err := payload.ToMsgPack(data, enc)
	if err != nil {
		return 0, err
	}

	msg := make([]byte, 0, len(raw)+1)
	msg = append(msg, byte(protocol.MessageTypeBroadcast))
	msg = append(msg, raw...)

	op := &sendBroadcastOp{
		id:    f.mgr.MakeOperationID(),
		cb:    cb,
		parts: make(map[message.Transport]message.OperationID),
	}

	f.mux.Lock()

	if f.cls {
		f.mux.Unlock()
		return 0, ErrorCanceled.Error(nil)
	}

	f.ops[op.id] = op
	f.mux.Unlock()

	// collect the sessions under the manager lock, then hand the frame
	// to each one outside of it
	var sessions []message.Transport
	f.mgr.ForeachRunningSession(func(c connection.Connection) {
		if s := c.Session(); s != nil {
			sessions = append(sessions, s)
		}
	})

	f.mux.Lock()
	op.pending = len(sessions)
	f.mux.Unlock()

	if len(sessions) == 0 {
		f.finish(op)
		return op.id, nil
	}

	for _, s := range sessions {
		ses := s

		sid := ses.SendAsync(msg, retry, func(res liberr.Error) {
			f.onPartDone(op, ses, res)
		})

		f.mux.Lock()
		op.parts[ses] = sid
		f.mux.Unlock()
	}

	return op.id, nil
}

func (f *fbr) onPartDone(op *sendBroadcastOp, ses message.Transport, res liberr.Error) {
	f.mux.Lock()

	delete(op.parts, ses)

	if res != nil && op.err == nil {
		op.err = res
	}

	op.pending--
	done := op.pending == 0
	f.mux.Unlock()

	if done {
		f.finish(op)
	}
}

// finish completes the summary callback exactly once and retires the id.
func (f *fbr) finish(op *sendBroadcastOp) {
	f.mux.Lock()

	if _, ok := f.ops[op.id]; !ok {
		f.mux.Unlock()
		return
	}

	delete(f.ops, op.id)
	err := op.err
	f.mux.Unlock()

	if op.cb != nil {
		f.str.Post(func() { op.cb(err) })
	}
}

func (f *fbr) SendBroadcast(data []byte, enc payload.Encoding, retry bool) liberr.Error {
	dne := make(chan liberr.Error, 1)

	if _, err := f.SendBroadcastAsync(data, enc, retry, func(res liberr.Error) {
		dne <- res
	}); err != nil {
		return err
	}

	return <-dne
}

func (f *fbr) CancelSendBroadcast(id manager.OperationID) liberr.Error {
	f.mux.Lock()

	op, ok := f.ops[id]
	if !ok {
		f.mux.Unlock()
		return ErrorInvalidOperationID.Error(nil)
	}

	if op.err == nil {
		op.err = ErrorCanceled.Error(nil)
	}

	parts := make(map[message.Transport]message.OperationID, len(op.parts))
	for s, sid := range op.parts {
		parts[s] = sid
	}
	f.mux.Unlock()

	// cancelling a part that already completed is fine: its callback
	// has fired and the bookkeeping above already counted it
	for s, sid := range parts {
		_ = s.CancelSend(sid)
	}

	return nil
}

func (f *fbr) ReceiveBroadcastAsync(enc payload.Encoding, buf []byte, cb ReceiveCallback) {
	f.mux.Lock()

	old := f.rcv
	f.rcv = &receiveSlot{enc: enc, buf: buf, cb: cb}
	f.mux.Unlock()

	if old != nil && old.cb != nil {
		f.str.Post(func() { old.cb(ErrorCanceled.Error(nil), uuid.Nil, 0) })
	}
}

func (f *fbr) CancelReceiveBroadcast() bool {
	f.mux.Lock()

	old := f.rcv
	f.rcv = nil
	f.mux.Unlock()

	if old == nil || old.cb == nil {
		return false
	}

	f.str.Post(func() { old.cb(ErrorCanceled.Error(nil), uuid.Nil, 0) })
	return true
}

func (f *fbr) OnMessage(msg []byte, conn connection.Connection) {
	if len(msg) == 0 {
		return
	}

	switch protocol.MessageType(msg[0]) {
	case protocol.MessageTypeBroadcast:
		f.deliver(msg[1:], conn)

	case protocol.MessageTypeAcknowledge:
		// reserved, nothing to do

	default:
		f.logDropped(conn)
	}
}

// deliver hands one broadcast to the armed receive slot; without one the
// message is dropped (best effort semantics).
func (f *fbr) deliver(raw []byte, conn connection.Connection) {
	f.mux.Lock()

	slot := f.rcv
	f.rcv = nil
	f.mux.Unlock()

	if slot == nil {
		return
	}

	n, err := payload.FromMsgPack(raw, slot.enc, slot.buf)
	src := conn.Remote().UUID

	if slot.cb != nil {
		f.str.Post(func() { slot.cb(err, src, n) })
	}
}

func (f *fbr) Close() {
	f.mux.Lock()
	f.cls = true
	ops := make([]*sendBroadcastOp, 0, len(f.ops))
	for _, op := range f.ops {
		if op.err == nil {
			op.err = ErrorCanceled.Error(nil)
		}
		ops = append(ops, op)
	}
	f.mux.Unlock()

	for _, op := range ops {
		f.finish(op)
	}

	f.CancelReceiveBroadcast()
}

func (f *fbr) logDropped(conn connection.Connection) {
	if f.log == nil {
		return
	}

	l := f.log()
	if l == nil {
		return
	}

	ent := l.Entry(loglvl.DebugLevel, "dropping session message with unknown type")
	ent = ent.FieldAdd("peer", conn.PeerDescription())
	ent.Log()
}
