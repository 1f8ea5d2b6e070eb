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
	"encoding/json"
	"time"

	"github.com/google/uuid"

	liberr "github.com/nabbar/golib/errors"

	"github.com/yohummus/yogi-core-go/fabric"
	"github.com/yohummus/yogi-core-go/manager"
	"github.com/yohummus/yogi-core-go/payload"
)

func (b *brc) UUID() uuid.UUID {
	return b.mgr.LocalInfo().UUID
}

func (b *brc) Info() ([]byte, liberr.Error) {
	raw, err := json.Marshal(b.mgr.LocalInfo())
	if err != nil {
		return nil, ErrorParamEmpty.Error(err)
	}

	return raw, nil
}

func (b *brc) Port() uint16 {
	return b.mgr.Port()
}

func (b *brc) ConnectedBranches() map[uuid.UUID][]byte {
	res := make(map[uuid.UUID][]byte)

	for id, inf := range b.mgr.ConnectedBranches() {
		raw, err := json.Marshal(inf)
		if err != nil {
			continue
		}

		res[id] = raw
	}

	return res
}

func (b *brc) AwaitEventAsync(mask manager.EventKind, h manager.EventHandler) bool {
	return b.mgr.AwaitEventAsync(mask, h)
}

func (b *brc) CancelAwaitEvent() bool {
	return b.mgr.CancelAwaitEvent()
}

func (b *brc) SendBroadcastAsync(data []byte, enc payload.Encoding, retry bool, cb fabric.SendCallback) (manager.OperationID, liberr.Error) {
	if f := b.fabric(); f != nil {
		return f.SendBroadcastAsync(data, enc, retry, cb)
	}

	return 0, ErrorClosed.Error(nil)
}

func (b *brc) SendBroadcast(data []byte, enc payload.Encoding, retry bool) liberr.Error {
	if f := b.fabric(); f != nil {
		return f.SendBroadcast(data, enc, retry)
	}

	return ErrorClosed.Error(nil)
}

func (b *brc) CancelSendBroadcast(id manager.OperationID) liberr.Error {
	if f := b.fabric(); f != nil {
		return f.CancelSendBroadcast(id)
	}

	return ErrorClosed.Error(nil)
}

func (b *brc) ReceiveBroadcastAsync(enc payload.Encoding, buf []byte, cb fabric.ReceiveCallback) {
	if f := b.fabric(); f != nil {
		f.ReceiveBroadcastAsync(enc, buf, cb)
	}
}

func (b *brc) CancelReceiveBroadcast() bool {
	if f := b.fabric(); f != nil {
		return f.CancelReceiveBroadcast()
	}

	return false
}

func (b *brc) Close() {
	b.mux.Lock()

	if b.cls {
		b.mux.Unlock()
		return
	}

	b.cls = true
	f := b.fbr
	b.fbr = nil
	b.mux.Unlock()

	// pending callbacks complete with canceled before any resource drops
	if f != nil {
		f.Close()
	}

	b.mgr.Stop(context.Background())

	// stop the workers, run whatever completion handlers are still
	// queued, then shut the executor for good
	b.exe.Stop()
	b.exe.WaitForStopped(drainTimeout)
	b.exe.Poll()
	b.exe.Close()
}

const drainTimeout = 3 * time.Second
