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

package manager

import (
	"encoding/json"

	"github.com/google/uuid"

	liberr "github.com/nabbar/golib/errors"
	loglvl "github.com/nabbar/golib/logger/level"

	"github.com/yohummus/yogi-core-go/protocol"
)

// EventKind is a bitmask of branch event kinds.
type EventKind int

const (
	EventNone EventKind = 0

	// EventBranchDiscovered fires when an advertisement arrives from a
	// peer that is not connected, not blacklisted and not already being
	// dialed; a dial attempt follows.
	EventBranchDiscovered EventKind = 1 << 0

	// EventBranchQueried fires when a peer's full info record arrived.
	EventBranchQueried EventKind = 1 << 1

	// EventConnectFinished fires when a handshake ended, successfully or
	// not; the per-event result tells which.
	EventConnectFinished EventKind = 1 << 2

	// EventConnectionLost fires when a running session died.
	EventConnectionLost EventKind = 1 << 3

	EventAll = EventBranchDiscovered | EventBranchQueried | EventConnectFinished | EventConnectionLost
)

func (k EventKind) String() string {
	switch k {
	case EventBranchDiscovered:
		return "branch-discovered"
	case EventBranchQueried:
		return "branch-queried"
	case EventConnectFinished:
		return "connect-finished"
	case EventConnectionLost:
		return "connection-lost"
	}

	return "none"
}

// Event is one branch lifecycle notification.
type Event struct {
	// Kind of the event.
	Kind EventKind

	// Result is the stable per-event result code.
	Result protocol.ResultCode

	// UUID of the peer the event refers to.
	UUID uuid.UUID

	// JSON carries the documented event payload.
	JSON []byte
}

// EventHandler consumes one awaited event. res is nil on delivery and a
// canceled error when the subscription was replaced or canceled.
type EventHandler func(res liberr.Error, ev *Event)

// AwaitEventAsync arms the single event slot. It reports whether a
// previously armed handler was canceled.
func (m *mgr) AwaitEventAsync(mask EventKind, h EventHandler) bool {
	m.evm.Lock()
	defer m.evm.Unlock()

	canceled := false

	if m.evh != nil {
		canceled = true
		old := m.evh
		m.evs.Post(func() { old(ErrorCanceled.Error(nil), nil) })
	}

	m.evk = mask
	m.evh = h

	return canceled
}

// CancelAwaitEvent clears the event slot, cancelling any armed handler.
func (m *mgr) CancelAwaitEvent() bool {
	return m.AwaitEventAsync(EventNone, nil)
}

// emitEvent logs the event and delivers it to the armed handler when the
// kind is observed. Delivery happens on the event strand so that event
// order is total per branch.
func (m *mgr) emitEvent(kind EventKind, res liberr.Error, id uuid.UUID, payload map[string]interface{}) {
	if payload == nil {
		payload = map[string]interface{}{"uuid": id.String()}
	}

	raw, _ := json.Marshal(payload)

	m.logEvent(kind, res, raw)

	m.evm.Lock()

	if m.evh == nil || m.evk&kind == 0 {
		m.evm.Unlock()
		return
	}

	h := m.evh
	m.evh = nil
	m.evk = EventNone
	m.evm.Unlock()

	ev := &Event{
		Kind:   kind,
		Result: protocol.ResultFromError(res),
		UUID:   id,
		JSON:   raw,
	}

	m.evs.Post(func() { h(nil, ev) })
}

func (m *mgr) logEvent(kind EventKind, res liberr.Error, payload []byte) {
	if m.log == nil {
		return
	}

	l := m.log()
	if l == nil {
		return
	}

	lvl := loglvl.InfoLevel
	switch kind {
	case EventBranchDiscovered:
		lvl = loglvl.DebugLevel
	case EventConnectionLost:
		lvl = loglvl.WarnLevel
	}

	ent := l.Entry(lvl, "branch event")
	ent = ent.FieldAdd("event", kind.String())
	ent = ent.FieldAdd("result", protocol.ResultFromError(res).Description())
	ent = ent.FieldAdd("payload", string(payload))
	ent.Log()
}
