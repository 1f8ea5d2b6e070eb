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

package transport

import (
	"net"

	liberr "github.com/nabbar/golib/errors"
	loglvl "github.com/nabbar/golib/logger/level"
)

func (t *tcp) ReadFull(p []byte) liberr.Error {
	t.rdm.Lock()
	defer t.rdm.Unlock()

	for len(p) > 0 {
		if err := t.Err(); err != nil {
			return err
		}

		c := p
		if t.lim > 0 && len(c) > t.lim {
			c = c[:t.lim]
		}

		n, err := t.con.Read(c)
		if n > 0 {
			t.touch()
			p = p[n:]
		}

		if err != nil {
			return t.fail(ErrorReadWriteFailed.Error(err))
		}
	}

	return nil
}

func (t *tcp) WriteFull(p []byte) liberr.Error {
	t.wrm.Lock()
	defer t.wrm.Unlock()

	for len(p) > 0 {
		if err := t.Err(); err != nil {
			return err
		}

		c := p
		if t.lim > 0 && len(c) > t.lim {
			c = c[:t.lim]
		}

		n, err := t.con.Write(c)
		if n > 0 {
			t.touch()
			p = p[n:]
		}

		if err != nil {
			return t.fail(ErrorReadWriteFailed.Error(err))
		}
	}

	return nil
}

func (t *tcp) PeerAddr() net.Addr {
	return t.con.RemoteAddr()
}

func (t *tcp) CreatedByInbound() bool {
	return t.inb
}

func (t *tcp) Failed() <-chan struct{} {
	return t.dne
}

func (t *tcp) Err() liberr.Error {
	select {
	case <-t.dne:
		return t.err
	default:
		return nil
	}
}

func (t *tcp) Close() error {
	t.fail(ErrorCanceled.Error(nil))
	return nil
}

// touch re-arms the inactivity watchdog after a successful transfer.
func (t *tcp) touch() {
	if t.wdg != nil {
		t.wdg.Reset(t.tmo)
	}
}

func (t *tcp) onTimeout() {
	t.fail(ErrorTimeout.Error(nil))
}

// fail records the first error, closes the socket and wakes every
// blocked operation. It returns the error that actually killed the
// transport, which may differ from err when a failure raced this call.
func (t *tcp) fail(err liberr.Error) liberr.Error {
	t.onc.Do(func() {
		t.err = err

		if t.wdg != nil {
			t.wdg.Stop()
		}

		_ = t.con.Close()
		close(t.dne)

		if t.log != nil {
			if l := t.log(); l != nil && err != nil && !err.IsCode(ErrorCanceled) {
				ent := l.Entry(loglvl.DebugLevel, "transport failed")
				ent = ent.FieldAdd("peer", t.con.RemoteAddr().String())
				ent = ent.ErrorAdd(true, err)
				ent.Log()
			}
		}
	})

	return t.err
}
