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

package listener

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	librun "github.com/nabbar/golib/runner/startStop"
)

type lsn struct {
	lis net.Listener
	alw []net.IP
	hdl AcceptHandler
	log liblog.FuncLog
	run librun.StartStop

	onc sync.Once
	dne chan struct{}
}

func (l *lsn) Port() uint16 {
	if a, ok := l.lis.Addr().(*net.TCPAddr); ok {
		return uint16(a.Port)
	}

	return 0
}

func (l *lsn) Addr() net.Addr {
	return l.lis.Addr()
}

func (l *lsn) Start(ctx context.Context) error {
	return l.run.Start(ctx)
}

func (l *lsn) Stop(ctx context.Context) error {
	return l.run.Stop(ctx)
}

func (l *lsn) IsRunning() bool {
	return l.run.IsRunning()
}

func (l *lsn) Done() <-chan struct{} {
	return l.dne
}

func (l *lsn) runStart(ctx context.Context) error {
	go l.acceptLoop()
	return nil
}

func (l *lsn) runStop(ctx context.Context) error {
	return l.lis.Close()
}

func (l *lsn) acceptLoop() {
	defer l.onc.Do(func() { close(l.dne) })

	for {
		con, err := l.lis.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			// terminal: the branch keeps driving outbound connections
			if l.log != nil {
				if lg := l.log(); lg != nil {
					ent := lg.Entry(loglvl.ErrorLevel, "stopped listening for incoming connections")
					ent = ent.FieldAdd("address", l.lis.Addr().String())
					ent = ent.ErrorAdd(true, err)
					ent.Log()
				}
			}

			return
		}

		if !l.allowed(con) {
			if l.log != nil {
				if lg := l.log(); lg != nil {
					ent := lg.Entry(loglvl.DebugLevel, "rejecting connection on unconfigured interface")
					ent = ent.FieldAdd("local", con.LocalAddr().String())
					ent.Log()
				}
			}

			_ = con.Close()
			continue
		}

		l.hdl(con)
	}
}

// allowed checks the local address of an accepted socket against the
// addresses of the configured interfaces. The single acceptor binds the
// wildcard address, so the restriction is enforced here.
func (l *lsn) allowed(con net.Conn) bool {
	if len(l.alw) == 0 {
		return true
	}

	adr, ok := con.LocalAddr().(*net.TCPAddr)
	if !ok {
		return false
	}

	for _, ip := range l.alw {
		if ip.Equal(adr.IP) {
			return true
		}
	}

	return false
}

func portString(port uint16) string {
	return strconv.Itoa(int(port))
}
