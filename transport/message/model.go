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
	"time"

	liberr "github.com/nabbar/golib/errors"

	"github.com/yohummus/yogi-core-go/protocol"
)

func (m *mtr) Start(onMessage Handler, onDead ErrHandler) {
	m.mux.Lock()
	m.onMsg = onMessage
	m.onDead = onDead
	m.mux.Unlock()

	go m.writeLoop()
	go m.readLoop()
	go m.deliverLoop()
	go m.watchDead()
}

func (m *mtr) nextID() OperationID {
	m.lid++
	if m.lid <= 0 {
		m.lid = 1
	}

	return m.lid
}

func (m *mtr) SendAsync(msg []byte, retry bool, cb SendCallback) OperationID {
	frame := protocol.AppendVarint(make([]byte, 0, len(msg)+protocol.MaxVarintLen), uint64(len(msg)))
	frame = append(frame, msg...)

	m.mux.Lock()
	id := m.nextID()

	if err := m.tr.Err(); err != nil {
		m.mux.Unlock()
		m.complete(cb, err)
		return id
	}

	if len(msg) > protocol.MaxMessagePayloadSize {
		m.mux.Unlock()
		m.complete(cb, ErrorPayloadTooLarge.Error(nil))
		return id
	}

	// parked operations keep strict FIFO order: as long as one is
	// waiting, nothing may jump the queue.
	if len(m.prk) == 0 && m.txq.Free() >= len(frame) {
		m.txq.Push(frame)
		m.mux.Unlock()

		m.wake()
		m.complete(cb, nil)
		return id
	}

	if !retry {
		m.mux.Unlock()
		m.complete(cb, ErrorTxQueueFull.Error(nil))
		return id
	}

	m.prk = append(m.prk, &sendOp{id: id, frame: frame, cb: cb})
	m.mux.Unlock()

	return id
}

func (m *mtr) CancelSend(id OperationID) liberr.Error {
	m.mux.Lock()

	for i, op := range m.prk {
		if op.id != id {
			continue
		}

		m.prk = append(m.prk[:i], m.prk[i+1:]...)
		m.mux.Unlock()

		m.complete(op.cb, ErrorCanceled.Error(nil))
		return nil
	}

	m.mux.Unlock()
	return ErrorInvalidOperationID.Error(nil)
}

func (m *mtr) Failed() <-chan struct{} {
	return m.tr.Failed()
}

func (m *mtr) Err() liberr.Error {
	return m.tr.Err()
}

func (m *mtr) Close() {
	_ = m.tr.Close()
}

// wake nudges the write loop without blocking.
func (m *mtr) wake() {
	select {
	case m.wke <- struct{}{}:
	default:
	}
}

// ready nudges the delivery loop without blocking.
func (m *mtr) ready() {
	select {
	case m.rdy <- struct{}{}:
	default:
	}
}

// complete invokes a callback, on the strand when one is configured.
func (m *mtr) complete(cb SendCallback, err liberr.Error) {
	if cb == nil {
		return
	}

	if m.str != nil {
		m.str.Post(func() { cb(err) })
		return
	}

	cb(err)
}

var heartbeatFrame = protocol.AppendVarint(nil, 0)

func (m *mtr) writeLoop() {
	idle := time.NewTimer(m.hbi)
	defer idle.Stop()

	for {
		m.mux.Lock()
		frame, ok := m.txq.Pop()
		if ok {
			m.admitParked()
		}
		m.mux.Unlock()

		if ok {
			if err := m.tr.WriteFull(frame); err != nil {
				return
			}

			resetTimer(idle, m.hbi)
			continue
		}

		select {
		case <-m.wke:

		case <-idle.C:
			if err := m.tr.WriteFull(heartbeatFrame); err != nil {
				return
			}

			idle.Reset(m.hbi)

		case <-m.tr.Failed():
			return
		}
	}
}

// admitParked moves parked operations into the queue while they fit,
// preserving their order. Callers hold the lock.
func (m *mtr) admitParked() {
	for len(m.prk) > 0 {
		op := m.prk[0]
		if m.txq.Free() < len(op.frame) {
			return
		}

		m.prk = m.prk[1:]
		m.txq.Push(op.frame)
		m.complete(op.cb, nil)
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}

	t.Reset(d)
}

type transportByteReader struct {
	m   *mtr
	one [1]byte
}

func (r *transportByteReader) ReadByte() (byte, error) {
	if err := r.m.tr.ReadFull(r.one[:]); err != nil {
		return 0, err
	}

	return r.one[0], nil
}

func (m *mtr) readLoop() {
	rdr := &transportByteReader{m: m}

	for {
		length, err := protocol.ReadVarint(rdr)
		if err != nil {
			return
		}

		if length == 0 {
			// heartbeat, nothing to deliver
			continue
		}

		if length > protocol.MaxMessagePayloadSize {
			_ = m.tr.Close()
			return
		}

		body := make([]byte, length)
		if err := m.tr.ReadFull(body); err != nil {
			return
		}

		// backpressure: hold off further socket reads until the consumer
		// frees queue space.
		for {
			m.mux.Lock()
			if m.rxq.Free() >= len(body) {
				m.rxq.Push(body)
				m.mux.Unlock()
				m.ready()
				break
			}
			m.mux.Unlock()

			select {
			case <-m.tr.Failed():
				return
			case <-time.After(time.Millisecond):
			}
		}
	}
}

func (m *mtr) deliverLoop() {
	for {
		m.mux.Lock()
		body, ok := m.rxq.Pop()
		h := m.onMsg
		m.mux.Unlock()

		if ok {
			if h != nil {
				if m.str != nil {
					done := make(chan struct{})
					m.str.Post(func() {
						h(body)
						close(done)
					})

					// keep deliveries ordered, but never outlive the
					// transport waiting for a worker
					select {
					case <-done:
					case <-m.tr.Failed():
						return
					}
				} else {
					h(body)
				}
			}

			continue
		}

		select {
		case <-m.rdy:
		case <-m.tr.Failed():
			return
		}
	}
}

// watchDead completes parked operations and reports death once the
// underlying transport fails.
func (m *mtr) watchDead() {
	<-m.tr.Failed()

	err := m.tr.Err()

	m.mux.Lock()
	prk := m.prk
	m.prk = nil
	m.txq.Clear()
	dead := m.onDead
	m.onDead = nil
	m.mux.Unlock()

	for _, op := range prk {
		m.complete(op.cb, err)
	}

	m.once.Do(func() {
		if dead != nil {
			if m.str != nil {
				m.str.Post(func() { dead(err) })
			} else {
				dead(err)
			}
		}
	})
}
