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
	"sync"
	"time"

	"github.com/google/uuid"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	"github.com/yohummus/yogi-core-go/advertising"
	"github.com/yohummus/yogi-core-go/branchinfo"
	"github.com/yohummus/yogi-core-go/config"
	"github.com/yohummus/yogi-core-go/connection"
	"github.com/yohummus/yogi-core-go/executor"
	"github.com/yohummus/yogi-core-go/listener"
)

// OperationID identifies one branch-wide asynchronous operation.
type OperationID int32

// ConnectionChangedHandler fires when a session starts (err nil) or dies
// (err carries the reason).
type ConnectionChangedHandler func(err liberr.Error, conn connection.Connection)

// MessageHandler consumes one session message of any running connection.
type MessageHandler func(msg []byte, conn connection.Connection)

// Manager owns every connection of a branch.
type Manager interface {
	// Start begins listening, advertising and consuming advertisements.
	Start(ctx context.Context) liberr.Error

	// Stop shuts every component and terminates every connection.
	Stop(ctx context.Context)

	// LocalInfo returns the local identity record.
	LocalInfo() *branchinfo.Local

	// Port returns the bound TCP server port.
	Port() uint16

	// AdvertisingEndpoint returns the advertising group endpoint.
	AdvertisingEndpoint() *net.UDPAddr

	// AwaitEventAsync arms the single-slot event subscription.
	AwaitEventAsync(mask EventKind, h EventHandler) bool

	// CancelAwaitEvent clears the event subscription.
	CancelAwaitEvent() bool

	// ConnectedBranches snapshots the remote records of every running
	// session.
	ConnectedBranches() map[uuid.UUID]*branchinfo.Remote

	// ForeachRunningSession calls fn for every running connection while
	// holding the connection map lock.
	ForeachRunningSession(fn func(conn connection.Connection))

	// MakeOperationID returns a monotonic, non-zero, positive id.
	MakeOperationID() OperationID
}

// Handlers groups the callbacks a manager reports into.
type Handlers struct {
	// OnConnectionChanged fires on session start and death.
	OnConnectionChanged ConnectionChangedHandler

	// OnMessage consumes session messages.
	OnMessage MessageHandler
}

// New builds a manager for the given configuration: the TCP listener is
// bound immediately so that the local info record can carry the chosen
// port; advertising starts with Start.
func New(cfg *config.Branch, exe executor.Executor, fct liblog.FuncLog, hdl Handlers) (Manager, liberr.Error) {
	if cfg == nil || exe == nil {
		return nil, ErrorParamEmpty.Error(nil)
	}

	m := &mgr{
		exe: exe,
		log: fct,
		hdl: hdl,
		cns: make(map[uuid.UUID]connection.Connection),
		pnd: make(map[uuid.UUID]bool),
		bck: make(map[uuid.UUID]bool),
		kpl: make(map[connection.Connection]bool),
	}

	m.evs = exe.NewStrand()

	// the TCP acceptor is scoped to the same interface list used for
	// advertising
	var allow []net.IP
	if !advertising.ContainsAllToken(cfg.AdvertisingInterfaces) {
		ifs, err := advertising.ResolveInterfaces(cfg.AdvertisingInterfaces)
		if err != nil {
			return nil, err
		}

		allow = advertising.InterfaceAddrs(ifs)
	}

	lis, err := listener.New(allow, 0, m.onAccepted, fct)
	if err != nil {
		return nil, err
	}
	m.lis = lis

	inf, err := branchinfo.NewLocal(cfg, lis.Port())
	if err != nil {
		return nil, err
	}
	m.inf = inf

	snd, err := advertising.NewSender(advertising.SenderConfig{
		Address:    cfg.AdvertisingAddress,
		Port:       cfg.AdvertisingPort,
		Interfaces: cfg.AdvertisingInterfaces,
		Interval:   advInterval(cfg),
		Message:    inf.AdvertisingMessage(),
		Logger:     fct,
	})
	if err != nil {
		return nil, err
	}
	m.snd = snd

	rcv, err := advertising.NewReceiver(advertising.ReceiverConfig{
		Address:    cfg.AdvertisingAddress,
		Port:       cfg.AdvertisingPort,
		Interfaces: cfg.AdvertisingInterfaces,
		OwnUUID:    inf.UUID,
		Handler:    m.onAdvertisement,
		Logger:     fct,
	})
	if err != nil {
		return nil, err
	}
	m.rcv = rcv

	return m, nil
}

// advInterval maps an infinite interval to a single beacon on start.
func advInterval(cfg *config.Branch) time.Duration {
	if cfg.AdvertisingInterval.IsInfinite() {
		return 0
	}

	return cfg.AdvertisingInterval.Time()
}

var _ Manager = &mgr{}

type mgr struct {
	exe executor.Executor
	log liblog.FuncLog
	hdl Handlers

	inf *branchinfo.Local
	lis listener.Listener
	snd advertising.Sender
	rcv advertising.Receiver

	mux sync.Mutex
	cns map[uuid.UUID]connection.Connection
	pnd map[uuid.UUID]bool
	bck map[uuid.UUID]bool
	kpl map[connection.Connection]bool
	run bool

	oid OperationID
	oim sync.Mutex

	evm sync.Mutex
	evk EventKind
	evh EventHandler
	evs executor.Strand
}
