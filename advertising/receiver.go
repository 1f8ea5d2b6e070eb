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
	"errors"
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libptc "github.com/nabbar/golib/network/protocol"
	librun "github.com/nabbar/golib/runner/startStop"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/yohummus/yogi-core-go/protocol"
)

// ObservationHandler receives one (remote UUID, TCP endpoint) pair per
// valid foreign advertisement.
type ObservationHandler func(id uuid.UUID, ep *net.TCPAddr)

// Receiver observes the advertising group.
type Receiver interface {
	// Start binds the advertising port, joins the group on every enabled
	// interface and begins reading datagrams.
	Start(ctx context.Context) error

	// Stop leaves the group and closes the socket.
	Stop(ctx context.Context) error

	// IsRunning reports whether datagrams are being consumed.
	IsRunning() bool
}

// ReceiverConfig configures a Receiver.
type ReceiverConfig struct {
	// Address of the advertising group, IPv4 or IPv6.
	Address string

	// Port of the advertising group.
	Port uint16

	// Interfaces tokens, see ResolveInterfaces.
	Interfaces []string

	// OwnUUID filters out the local branch's own beacons.
	OwnUUID uuid.UUID

	// Handler receives every observation.
	Handler ObservationHandler

	// Logger supplies the diagnostics logger.
	Logger liblog.FuncLog
}

// NewReceiver validates the configuration and resolves the enabled
// interfaces. The socket is only opened by Start.
func NewReceiver(cfg ReceiverConfig) (Receiver, liberr.Error) {
	if cfg.Handler == nil {
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

	r := &rcv{
		cfg: cfg,
		grp: grp,
		mlt: mc,
		ifs: ifs,
	}

	r.run = librun.New(r.runStart, r.runStop)
	return r, nil
}

type rcv struct {
	cfg ReceiverConfig
	grp *net.UDPAddr
	mlt bool
	ifs []net.Interface
	run librun.StartStop

	con *net.UDPConn

	mux sync.Mutex
	lcl map[string]bool
	hst map[string]bool
}

func (r *rcv) Start(ctx context.Context) error {
	return r.run.Start(ctx)
}

func (r *rcv) Stop(ctx context.Context) error {
	return r.run.Stop(ctx)
}

func (r *rcv) IsRunning() bool {
	return r.run.IsRunning()
}

func (r *rcv) runStart(ctx context.Context) error {
	lc := net.ListenConfig{Control: reuseControl}

	pc, err := lc.ListenPacket(ctx, libptc.NetworkUDP.Code(), listenAddr(int(r.cfg.Port)))
	if err != nil {
		return ErrorBindSocket.Error(err)
	}

	con, ok := pc.(*net.UDPConn)
	if !ok {
		_ = pc.Close()
		return ErrorBindSocket.Error(nil)
	}

	r.con = con

	if r.mlt {
		if e := r.joinGroup(); e != nil {
			_ = con.Close()
			return e
		}
	}

	r.populateSelfAddrs()

	go r.readLoop()
	return nil
}

// populateSelfAddrs snapshots the addresses considered to be this host:
// every local interface address and every address the local hostname
// resolves to. Lookup failures just leave the respective set empty.
func (r *rcv) populateSelfAddrs() {
	lcl := make(map[string]bool)
	hst := make(map[string]bool)

	if addrs, err := net.InterfaceAddrs(); err == nil {
		for _, a := range addrs {
			if ipn, ok := a.(*net.IPNet); ok {
				lcl[ipn.IP.String()] = true
			}
		}
	}

	if name, err := os.Hostname(); err == nil {
		if ips, err := net.LookupHost(name); err == nil {
			for _, ip := range ips {
				hst[ip] = true
			}
		}
	}

	r.mux.Lock()
	r.lcl = lcl
	r.hst = hst
	r.mux.Unlock()
}

// pointsBackToSelf reports whether a datagram arrived from an address
// that is not on any local interface but resolves to the local hostname:
// a loop through an alias or NAT that must not be dialed. Addresses on a
// local interface stay valid so that other branches on this host remain
// reachable.
func (r *rcv) pointsBackToSelf(ip net.IP) bool {
	r.mux.Lock()
	defer r.mux.Unlock()

	if r.lcl[ip.String()] {
		return false
	}

	return r.hst[ip.String()]
}

func listenAddr(port int) string {
	return net.JoinHostPort("", strconv.Itoa(port))
}

func (r *rcv) runStop(ctx context.Context) error {
	if r.con != nil {
		return r.con.Close()
	}

	return nil
}

// joinGroup subscribes the socket on every enabled interface. One
// successful join is enough; failing interfaces are logged and skipped.
func (r *rcv) joinGroup() liberr.Error {
	var (
		joined bool
		pc4    *ipv4.PacketConn
		pc6    *ipv6.PacketConn
	)

	if r.grp.IP.To4() != nil {
		pc4 = ipv4.NewPacketConn(r.con)
	} else {
		pc6 = ipv6.NewPacketConn(r.con)
	}

	for i := range r.ifs {
		ifc := r.ifs[i]

		var err error
		if pc4 != nil {
			err = pc4.JoinGroup(&ifc, &net.UDPAddr{IP: r.grp.IP})
		} else {
			err = pc6.JoinGroup(&ifc, &net.UDPAddr{IP: r.grp.IP})
		}

		if err != nil {
			r.logDrop("joining multicast group failed on interface", err, loglvl.WarnLevel)
			continue
		}

		joined = true
	}

	if !joined {
		return ErrorJoinGroup.Error(nil)
	}

	return nil
}

func (r *rcv) readLoop() {
	buf := make([]byte, protocol.AdvertisingMessageSize+1)

	for {
		n, src, err := r.con.ReadFromUDP(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				r.logDrop("reading advertisement datagram failed", err, loglvl.WarnLevel)
			}

			return
		}

		id, ep, ok := r.handle(buf[:n], src)
		if !ok {
			continue
		}

		r.cfg.Handler(id, ep)
	}
}

// handle validates one datagram and derives the peer's TCP endpoint from
// the datagram source and the advertised port.
func (r *rcv) handle(msg []byte, src *net.UDPAddr) (uuid.UUID, *net.TCPAddr, bool) {
	id, port, err := protocol.ParseAdvertisingMessage(msg)
	if err != nil {
		r.logDrop("discarding malformed advertisement datagram", err, loglvl.DebugLevel)
		return uuid.Nil, nil, false
	}

	if err = protocol.CheckVersionCompatibility(msg); err != nil {
		r.logDrop("discarding advertisement from incompatible branch", err, loglvl.DebugLevel)
		return uuid.Nil, nil, false
	}

	if id == r.cfg.OwnUUID {
		return uuid.Nil, nil, false
	}

	if r.pointsBackToSelf(src.IP) {
		r.logDrop("discarding advertisement from foreign address resolving to this host", nil, loglvl.DebugLevel)
		return uuid.Nil, nil, false
	}

	return id, &net.TCPAddr{IP: src.IP, Port: int(port), Zone: src.Zone}, true
}

func (r *rcv) logDrop(msg string, err error, lvl loglvl.Level) {
	if r.cfg.Logger == nil {
		return
	}

	l := r.cfg.Logger()
	if l == nil {
		return
	}

	ent := l.Entry(lvl, msg)
	ent = ent.FieldAdd("group", r.grp.String())
	ent = ent.ErrorAdd(true, err)
	ent.Log()
}
