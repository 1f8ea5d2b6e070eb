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
	"context"
	"net"

	"github.com/google/uuid"

	liberr "github.com/nabbar/golib/errors"
	loglvl "github.com/nabbar/golib/logger/level"

	"github.com/yohummus/yogi-core-go/branchinfo"
	"github.com/yohummus/yogi-core-go/connection"
	"github.com/yohummus/yogi-core-go/transport"
)

func (m *mgr) Start(ctx context.Context) liberr.Error {
	m.mux.Lock()
	m.run = true
	m.mux.Unlock()

	if err := m.lis.Start(ctx); err != nil {
		return m.asLibErr(err)
	}

	if err := m.rcv.Start(ctx); err != nil {
		return m.asLibErr(err)
	}

	if err := m.snd.Start(ctx); err != nil {
		return m.asLibErr(err)
	}

	m.logDbg("connection manager started", "port", int(m.lis.Port()))
	return nil
}

func (m *mgr) asLibErr(err error) liberr.Error {
	if err == nil {
		return nil
	}

	if e, ok := err.(liberr.Error); ok {
		return e
	}

	return ErrorParamEmpty.Error(err)
}

func (m *mgr) Stop(ctx context.Context) {
	m.mux.Lock()
	m.run = false
	cns := make([]connection.Connection, 0, len(m.cns)+len(m.kpl))
	for _, c := range m.cns {
		cns = append(cns, c)
	}
	for c := range m.kpl {
		cns = append(cns, c)
	}
	m.cns = make(map[uuid.UUID]connection.Connection)
	m.kpl = make(map[connection.Connection]bool)
	m.mux.Unlock()

	_ = m.snd.Stop(ctx)
	_ = m.rcv.Stop(ctx)
	_ = m.lis.Stop(ctx)

	for _, c := range cns {
		c.Close()
	}

	m.CancelAwaitEvent()
}

func (m *mgr) LocalInfo() *branchinfo.Local {
	return m.inf
}

func (m *mgr) Port() uint16 {
	return m.lis.Port()
}

func (m *mgr) AdvertisingEndpoint() *net.UDPAddr {
	return m.snd.Endpoint()
}

func (m *mgr) ConnectedBranches() map[uuid.UUID]*branchinfo.Remote {
	res := make(map[uuid.UUID]*branchinfo.Remote)

	m.mux.Lock()
	defer m.mux.Unlock()

	for id, c := range m.cns {
		if c.SessionRunning() {
			res[id] = c.Remote()
		}
	}

	return res
}

func (m *mgr) ForeachRunningSession(fn func(conn connection.Connection)) {
	m.mux.Lock()
	defer m.mux.Unlock()

	for _, c := range m.cns {
		if c.SessionRunning() {
			fn(c)
		}
	}
}

func (m *mgr) MakeOperationID() OperationID {
	m.oim.Lock()
	defer m.oim.Unlock()

	m.oid++
	if m.oid <= 0 {
		m.oid = 1
	}

	return m.oid
}

// onAdvertisement handles one observation of the advertising receiver.
func (m *mgr) onAdvertisement(id uuid.UUID, ep *net.TCPAddr) {
	m.mux.Lock()

	if !m.run || m.cns[id] != nil || m.bck[id] || m.pnd[id] {
		m.mux.Unlock()
		return
	}

	m.pnd[id] = true
	m.mux.Unlock()

	m.logDbg("attempting to connect to advertised branch", "uuid", id.String(), "endpoint", ep.String())

	m.emitEvent(EventBranchDiscovered, nil, id, map[string]interface{}{
		"uuid":               id.String(),
		"tcp_server_address": ep.IP.String(),
		"tcp_server_port":    ep.Port,
	})

	go m.dial(id, ep)
}

func (m *mgr) dial(id uuid.UUID, ep *net.TCPAddr) {
	tr, err := transport.Dial(context.Background(), ep.String(), m.transportOptions())
	if err != nil {
		m.emitEvent(EventBranchQueried, err, id, nil)

		m.mux.Lock()
		delete(m.pnd, id)
		m.mux.Unlock()
		return
	}

	m.startExchange(tr, id)
}

// onAccepted handles one socket accepted by the listener.
func (m *mgr) onAccepted(con net.Conn) {
	m.mux.Lock()
	run := m.run
	m.mux.Unlock()

	if !run {
		_ = con.Close()
		return
	}

	m.logDbg("accepted incoming connection", "peer", con.RemoteAddr().String())

	m.startExchange(transport.New(con, true, m.transportOptions()), uuid.Nil)
}

func (m *mgr) transportOptions() transport.Options {
	opt := transport.Options{
		ByteLimit: m.inf.TransceiveByteLimit.Int(),
		Logger:    m.log,
	}

	if !m.inf.Timeout.IsInfinite() {
		opt.Timeout = m.inf.Timeout.Time()
	}

	return opt
}

// startExchange wraps the transport into a connection, anchors it in the
// keepalive set and begins the info exchange. advUUID is Nil for
// inbound connections.
func (m *mgr) startExchange(tr transport.Transport, advUUID uuid.UUID) {
	cnn, err := connection.New(tr, m.inf, connection.Options{
		Executor:    m.exe,
		TxQueueSize: m.inf.TxQueueSize.Int(),
		RxQueueSize: m.inf.RxQueueSize.Int(),
		Timeout:     m.transportOptions().Timeout,
		Logger:      m.log,
	})

	if err != nil {
		_ = tr.Close()
		return
	}

	m.mux.Lock()
	m.kpl[cnn] = true
	m.mux.Unlock()

	cnn.ExchangeInfo(func(res liberr.Error) {
		m.mux.Lock()
		delete(m.kpl, cnn)
		delete(m.pnd, advUUID)
		m.mux.Unlock()

		m.onExchangeFinished(res, cnn, advUUID)
	})
}

func (m *mgr) onExchangeFinished(res liberr.Error, cnn connection.Connection, advUUID uuid.UUID) {
	if res != nil {
		m.logDbg("exchanging branch info failed", "peer", cnn.PeerDescription(), "error", res.Error())
		cnn.Close()
		return
	}

	rmt := cnn.Remote()

	// an outbound dial must reach the branch whose advertisement
	// triggered it; a mismatch fixes itself on the next advertisement
	if !cnn.CreatedByInbound() && advUUID != uuid.Nil && rmt.UUID != advUUID {
		m.logWrn("dropping connection with mismatching advertised UUID", "uuid", rmt.UUID.String())
		cnn.Close()
		return
	}

	m.mux.Lock()

	if m.bck[rmt.UUID] {
		m.mux.Unlock()
		m.logDbg("dropping connection to blacklisted branch", "uuid", rmt.UUID.String())
		cnn.Close()
		return
	}

	old, exists := m.cns[rmt.UUID]

	if exists && !m.hasHigherPriority(cnn, rmt.UUID) {
		m.mux.Unlock()
		m.logDbg("dropping duplicate connection with lower priority", "uuid", rmt.UUID.String())
		cnn.Close()
		return
	}

	m.cns[rmt.UUID] = cnn
	m.mux.Unlock()

	if exists && old != cnn {
		old.Close()
	}

	if !exists {
		m.emitEvent(EventBranchQueried, nil, rmt.UUID, rmt.ToJSON())

		if chk := m.checkRemoteInfo(rmt); chk != nil {
			m.dropConnection(cnn, rmt.UUID)
			m.emitEvent(EventConnectFinished, chk, rmt.UUID, nil)
			return
		}
	}

	if m.inf.GhostMode {
		m.mux.Lock()
		m.bck[rmt.UUID] = true
		m.mux.Unlock()

		m.dropConnection(cnn, rmt.UUID)
		return
	}

	m.startAuthenticate(cnn)
}

// hasHigherPriority implements the deterministic dial/accept tie-break:
// the surviving connection is the one whose inbound flag equals the
// order of the two UUIDs. Callers hold the map lock.
func (m *mgr) hasHigherPriority(cnn connection.Connection, rmt uuid.UUID) bool {
	less := uuidLess(rmt, m.inf.UUID)
	return cnn.CreatedByInbound() == less
}

func uuidLess(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return false
}

// checkRemoteInfo validates a newly queried peer against the local
// branch and every connected peer. Conflicts with the local branch
// blacklist the peer for the lifetime of this branch.
func (m *mgr) checkRemoteInfo(rmt *branchinfo.Remote) liberr.Error {
	m.mux.Lock()
	defer m.mux.Unlock()

	if rmt.NetworkName != m.inf.NetworkName {
		m.bck[rmt.UUID] = true
		return ErrorNetNameMismatch.Error(nil)
	}

	if rmt.Name == m.inf.Name {
		m.bck[rmt.UUID] = true
		return ErrorDuplicateBranchName.Error(nil)
	}

	if rmt.Path == m.inf.Path {
		m.bck[rmt.UUID] = true
		return ErrorDuplicateBranchPath.Error(nil)
	}

	for id, c := range m.cns {
		if id == rmt.UUID {
			continue
		}

		o := c.Remote()
		if o == nil {
			continue
		}

		if o.Name == rmt.Name {
			return ErrorDuplicateBranchName.Error(nil)
		}

		if o.Path == rmt.Path {
			return ErrorDuplicateBranchPath.Error(nil)
		}
	}

	return nil
}

func (m *mgr) dropConnection(cnn connection.Connection, id uuid.UUID) {
	m.mux.Lock()
	if m.cns[id] == cnn {
		delete(m.cns, id)
	}
	m.mux.Unlock()

	cnn.Close()
}

func (m *mgr) startAuthenticate(cnn connection.Connection) {
	cnn.Authenticate(func(res liberr.Error) {
		id := cnn.Remote().UUID

		if res != nil {
			if res.HasCode(connection.ErrorPasswordMismatch) {
				m.mux.Lock()
				m.bck[id] = true
				m.mux.Unlock()
			}

			m.dropConnection(cnn, id)
			m.emitEvent(EventConnectFinished, res, id, nil)
			return
		}

		m.logDbg("successfully authenticated", "uuid", id.String())
		m.startSession(cnn)
	})
}

func (m *mgr) startSession(cnn connection.Connection) {
	id := cnn.Remote().UUID

	cnn.RunSession(
		func(msg []byte) {
			if m.hdl.OnMessage != nil {
				m.hdl.OnMessage(msg, cnn)
			}
		},
		func(res liberr.Error) {
			m.onSessionTerminated(res, cnn)
		},
	)

	m.emitEvent(EventConnectFinished, nil, id, nil)
	m.logDbg("session started", "uuid", id.String())

	if m.hdl.OnConnectionChanged != nil {
		m.hdl.OnConnectionChanged(nil, cnn)
	}
}

func (m *mgr) onSessionTerminated(res liberr.Error, cnn connection.Connection) {
	id := cnn.Remote().UUID

	m.mux.Lock()
	run := m.run
	if m.cns[id] == cnn {
		delete(m.cns, id)
	}
	m.mux.Unlock()

	if !run {
		return
	}

	m.logWrn("session terminated", "uuid", id.String())
	m.emitEvent(EventConnectionLost, res, id, nil)

	if m.hdl.OnConnectionChanged != nil {
		m.hdl.OnConnectionChanged(res, cnn)
	}
}

func (m *mgr) logDbg(msg string, kv ...interface{}) {
	m.logKV(loglvl.DebugLevel, msg, kv...)
}

func (m *mgr) logWrn(msg string, kv ...interface{}) {
	m.logKV(loglvl.WarnLevel, msg, kv...)
}

func (m *mgr) logKV(lvl loglvl.Level, msg string, kv ...interface{}) {
	if m.log == nil {
		return
	}

	l := m.log()
	if l == nil {
		return
	}

	ent := l.Entry(lvl, msg)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			ent = ent.FieldAdd(k, kv[i+1])
		}
	}
	ent.Log()
}
