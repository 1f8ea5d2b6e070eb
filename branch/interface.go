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

package branch

import (
	"context"
	"sync"

	"github.com/google/uuid"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	"github.com/yohummus/yogi-core-go/config"
	"github.com/yohummus/yogi-core-go/connection"
	"github.com/yohummus/yogi-core-go/executor"
	"github.com/yohummus/yogi-core-go/fabric"
	"github.com/yohummus/yogi-core-go/manager"
	"github.com/yohummus/yogi-core-go/payload"
)

// Branch is one peer of a Yogi network.
type Branch interface {
	// UUID returns the immutable identifier of this branch.
	UUID() uuid.UUID

	// Info returns the JSON snapshot of the local identity record.
	Info() ([]byte, liberr.Error)

	// Port returns the bound TCP server port.
	Port() uint16

	// ConnectedBranches returns the JSON snapshots of every running
	// session's remote record, keyed by peer UUID.
	ConnectedBranches() map[uuid.UUID][]byte

	// AwaitEventAsync arms the single-slot event subscription for every
	// kind in mask. It reports whether a previously armed handler was
	// canceled.
	AwaitEventAsync(mask manager.EventKind, h manager.EventHandler) bool

	// CancelAwaitEvent clears the event subscription.
	CancelAwaitEvent() bool

	// SendBroadcastAsync fans data out to every running session.
	SendBroadcastAsync(data []byte, enc payload.Encoding, retry bool, cb fabric.SendCallback) (manager.OperationID, liberr.Error)

	// SendBroadcast is the blocking variant of SendBroadcastAsync. It
	// must not be called from inside a completion handler with retry
	// enabled.
	SendBroadcast(data []byte, enc payload.Encoding, retry bool) liberr.Error

	// CancelSendBroadcast cancels one pending broadcast by id.
	CancelSendBroadcast(id manager.OperationID) liberr.Error

	// ReceiveBroadcastAsync arms the single broadcast receive slot.
	ReceiveBroadcastAsync(enc payload.Encoding, buf []byte, cb fabric.ReceiveCallback)

	// CancelReceiveBroadcast clears the receive slot.
	CancelReceiveBroadcast() bool

	// Close stops every component and cancels every pending operation
	// with a canceled error. The branch is unusable afterwards.
	Close()
}

// Create parses raw as a JSON configuration document and brings a branch
// up: TCP listener, advertising sender and receiver, connection manager
// and broadcast fabric. defLog may be nil.
func Create(raw []byte, defLog liblog.FuncLog) (Branch, liberr.Error) {
	cfg, err := config.Parse(raw)
	if err != nil {
		return nil, err
	}

	return CreateWithConfig(cfg, defLog)
}

// CreateWithConfig brings a branch up from an already validated
// configuration.
func CreateWithConfig(cfg *config.Branch, defLog liblog.FuncLog) (Branch, liberr.Error) {
	if cfg == nil {
		return nil, ErrorParamEmpty.Error(nil)
	}

	b := &brc{
		exe: executor.New(),
		log: defLog,
	}

	mgr, err := manager.New(cfg, b.exe, defLog, manager.Handlers{
		OnMessage: func(msg []byte, conn connection.Connection) {
			if f := b.fabric(); f != nil {
				f.OnMessage(msg, conn)
			}
		},
	})
	if err != nil {
		b.exe.Close()
		return nil, err
	}
	b.mgr = mgr

	fbr, err := fabric.New(mgr, b.exe, defLog)
	if err != nil {
		b.exe.Close()
		return nil, err
	}
	b.fbr = fbr

	for i := 0; i < workerCount; i++ {
		b.exe.RunInBackground()
	}

	if err = mgr.Start(context.Background()); err != nil {
		b.Close()
		return nil, err
	}

	return b, nil
}

// workerCount sizes the executor pool; two workers keep independent
// connections parallel while strands serialize per-connection handlers.
const workerCount = 2

var _ Branch = &brc{}

type brc struct {
	exe executor.Executor
	log liblog.FuncLog
	mgr manager.Manager
	fbr fabric.Fabric

	mux sync.Mutex
	cls bool
}

func (b *brc) fabric() fabric.Fabric {
	b.mux.Lock()
	defer b.mux.Unlock()

	return b.fbr
}
