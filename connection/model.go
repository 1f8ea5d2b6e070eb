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

package connection

import (
	"bytes"
	"fmt"

	liberr "github.com/nabbar/golib/errors"

	"github.com/yohummus/yogi-core-go/branchinfo"
	"github.com/yohummus/yogi-core-go/protocol"
	"github.com/yohummus/yogi-core-go/transport"
	"github.com/yohummus/yogi-core-go/transport/message"
)

func (c *cnx) State() State {
	c.mux.Lock()
	defer c.mux.Unlock()

	return c.stt
}

func (c *cnx) setState(s State) {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.stt != StateTerminated {
		c.stt = s
	}
}

func (c *cnx) Remote() *branchinfo.Remote {
	c.mux.Lock()
	defer c.mux.Unlock()

	return c.rmt
}

func (c *cnx) Session() message.Transport {
	c.mux.Lock()
	defer c.mux.Unlock()

	return c.ses
}

func (c *cnx) SessionRunning() bool {
	c.mux.Lock()
	defer c.mux.Unlock()

	return c.stt == StateRunning
}

func (c *cnx) CreatedByInbound() bool {
	return c.tr.CreatedByInbound()
}

func (c *cnx) PeerDescription() string {
	if r := c.Remote(); r != nil {
		return fmt.Sprintf("[%s]", r.UUID)
	}

	return c.tr.PeerAddr().String()
}

func (c *cnx) Close() {
	c.setState(StateTerminated)
	_ = c.tr.Close()
}

// fail moves the connection to Terminated and completes the callback
// with the error that actually killed it.
func (c *cnx) fail(cb Callback, err liberr.Error) {
	c.setState(StateTerminated)
	_ = c.tr.Close()

	if terr := c.tr.Err(); terr != nil && err == nil {
		err = terr
	}

	c.post(cb, err)
}

func (c *cnx) post(cb Callback, err liberr.Error) {
	if cb == nil {
		return
	}

	c.str.Post(func() { cb(err) })
}

func (c *cnx) ExchangeInfo(cb Callback) {
	c.setState(StateInfoExchange)

	go func() {
		if err := c.tr.WriteFull(c.lcl.InfoMessage()); err != nil {
			c.fail(cb, err)
			return
		}

		hdr := make([]byte, protocol.AdvertisingMessageSize)
		if err := c.tr.ReadFull(hdr); err != nil {
			c.fail(cb, err)
			return
		}

		if err := protocol.CheckVersionCompatibility(hdr); err != nil {
			c.fail(cb, err)
			return
		}

		length, err := protocol.ReadVarint(&byteReader{tr: c.tr})
		if err != nil {
			c.fail(cb, err)
			return
		}

		if length > protocol.MaxMessagePayloadSize {
			c.fail(cb, protocol.ErrorDeserializeFailed.Error(nil))
			return
		}

		body := make([]byte, length)
		if err := c.tr.ReadFull(body); err != nil {
			c.fail(cb, err)
			return
		}

		rmt, err := branchinfo.ParseRemote(hdr, body, c.tr.PeerAddr())
		if err != nil {
			c.fail(cb, err)
			return
		}

		if rmt.UUID == c.lcl.UUID {
			c.fail(cb, ErrorLoopback.Error(nil))
			return
		}

		c.mux.Lock()
		c.rmt = rmt
		if c.stt != StateTerminated {
			c.stt = StateInfoExchanged
		}
		c.mux.Unlock()

		c.post(cb, nil)
	}()
}

func (c *cnx) Authenticate(cb Callback) {
	if c.State() != StateInfoExchanged {
		c.post(cb, ErrorInvalidState.Error(nil))
		return
	}

	c.setState(StateAuthenticating)

	go func() {
		ownChallenge, err := protocol.MakeChallenge()
		if err != nil {
			c.fail(cb, err)
			return
		}

		if err = c.tr.WriteFull(ownChallenge); err != nil {
			c.fail(cb, err)
			return
		}

		peerChallenge := make([]byte, protocol.ChallengeSize)
		if err = c.tr.ReadFull(peerChallenge); err != nil {
			c.fail(cb, err)
			return
		}

		if err = c.tr.WriteFull(protocol.SolveChallenge(c.lcl.PasswordHash, peerChallenge)); err != nil {
			c.fail(cb, err)
			return
		}

		peerSolution := make([]byte, protocol.SolutionSize)
		if err = c.tr.ReadFull(peerSolution); err != nil {
			c.fail(cb, err)
			return
		}

		if !bytes.Equal(peerSolution, protocol.SolveChallenge(c.lcl.PasswordHash, ownChallenge)) {
			c.fail(cb, ErrorPasswordMismatch.Error(nil))
			return
		}

		c.post(cb, nil)
	}()
}

func (c *cnx) RunSession(onMsg message.Handler, onTerm Callback) {
	ses := message.New(c.tr, message.Options{
		TxQueueSize: c.opt.TxQueueSize,
		RxQueueSize: c.opt.RxQueueSize,
		Timeout:     c.opt.Timeout,
		Strand:      c.str,
		Logger:      c.opt.Logger,
	})

	c.mux.Lock()
	c.ses = ses
	if c.stt != StateTerminated {
		c.stt = StateRunning
	}
	c.mux.Unlock()

	ses.Start(onMsg, func(err liberr.Error) {
		c.setState(StateTerminated)

		if onTerm != nil {
			onTerm(err)
		}
	})
}

type byteReader struct {
	tr  transport.Transport
	one [1]byte
}

func (r *byteReader) ReadByte() (byte, error) {
	if err := r.tr.ReadFull(r.one[:]); err != nil {
		return 0, err
	}

	return r.one[0], nil
}
