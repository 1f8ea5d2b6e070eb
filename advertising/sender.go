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

package advertising

import (
	"context"
	"net"
	"time"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libptc "github.com/nabbar/golib/network/protocol"
	libtck "github.com/nabbar/golib/runner/ticker"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// Sender periodically announces the local branch.
type Sender interface {
	// Start opens the socket, emits a first beacon and schedules the
	// periodic ones.
	Start(ctx context.Context) error

	// Stop cancels the schedule and closes the socket.
	Stop(ctx context.Context) error

	// IsRunning reports whether beacons are being emitted.
	IsRunning() bool

	// Endpoint returns the advertising group endpoint.
	Endpoint() *net.UDPAddr
}

// SenderConfig configures a Sender.
type SenderConfig struct {
	// Address of the advertising group, IPv4 or IPv6.
	Address string

	// Port of the advertising group.
	Port uint16

	// Interfaces tokens, see ResolveInterfaces.
	Interfaces []string

	// Interval between two beacons. Zero or negative emits a single
	// beacon on start.
	Interval time.Duration

	// Message is the advertisement datagram to emit.
	Message []byte

	// Logger supplies the diagnostics logger.
	Logger liblog.FuncLog
}

// NewSender validates the configuration and resolves the enabled
// interfaces. The socket is only opened by Start.
func NewSender(cfg SenderConfig) (Sender, liberr.Error) {
	if len(cfg.Message) == 0 {
		return nil, ErrorParamEmpty.Error(nil)
	}

	grp, mc, err := GroupAddr(cfg.Address, cfg.Port)
	if err != nil {
		return nil, err
	}

	ifs, err := ResolveInterfaces(cfg.Interfaces)
	if err != nil {
		return nil, err
	}

	s := &snd{
		cfg: cfg,
		grp: grp,
		mlt: mc,
		ifs: ifs,
	}

	if cfg.Interval > 0 {
		s.tck = libtck.New(cfg.Interval, s.tick)
	}

	return s, nil
}

type snd struct {
	cfg SenderConfig
	grp *net.UDPAddr
	mlt bool
	ifs []net.Interface
	tck libtck.Ticker

	con *net.UDPConn
	pc4 *ipv4.PacketConn
	pc6 *ipv6.PacketConn
	run bool
}

func (s *snd) Endpoint() *net.UDPAddr {
	return s.grp
}

func (s *snd) IsRunning() bool {
	return s.run
}

func (s *snd) Start(ctx context.Context) error {
	con, err := net.ListenUDP(libptc.NetworkUDP.Code(), nil)
	if err != nil {
		return ErrorOpenSocket.Error(err)
	}

	s.con = con

	if s.mlt {
		if s.grp.IP.To4() != nil {
			s.pc4 = ipv4.NewPacketConn(con)
		} else {
			s.pc6 = ipv6.NewPacketConn(con)
		}
	}

	s.emit()
	s.run = true

	if s.tck != nil {
		return s.tck.Start(ctx)
	}

	return nil
}

func (s *snd) Stop(ctx context.Context) error {
	s.run = false

	if s.tck != nil {
		_ = s.tck.Stop(ctx)
	}

	if s.con != nil {
		return s.con.Close()
	}

	return nil
}

func (s *snd) tick(ctx context.Context, _ *time.Ticker) error {
	s.emit()
	return nil
}

// emit sends one beacon on every enabled interface. A failing interface
// is logged and skipped.
func (s *snd) emit() {
	if !s.mlt {
		if _, err := s.con.WriteToUDP(s.cfg.Message, s.grp); err != nil {
			s.logSkip("", err)
		}

		return
	}

	for i := range s.ifs {
		ifc := s.ifs[i]

		var err error
		if s.pc4 != nil {
			if err = s.pc4.SetMulticastInterface(&ifc); err == nil {
				_, err = s.pc4.WriteTo(s.cfg.Message, nil, s.grp)
			}
		} else if s.pc6 != nil {
			if err = s.pc6.SetMulticastInterface(&ifc); err == nil {
				_, err = s.pc6.WriteTo(s.cfg.Message, nil, s.grp)
			}
		}

		if err != nil {
			s.logSkip(ifc.Name, err)
		}
	}
}

func (s *snd) logSkip(ifname string, err error) {
	if s.cfg.Logger == nil {
		return
	}

	l := s.cfg.Logger()
	if l == nil {
		return
	}

	ent := l.Entry(loglvl.WarnLevel, "sending advertisement failed")
	if ifname != "" {
		ent = ent.FieldAdd("interface", ifname)
	}
	ent = ent.FieldAdd("group", s.grp.String())
	ent = ent.ErrorAdd(true, err)
	ent.Log()
}
