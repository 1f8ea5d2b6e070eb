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

package branchinfo

import (
	"encoding/json"
	"math"
	"net"
	"time"

	"github.com/google/uuid"

	liberr "github.com/nabbar/golib/errors"

	"github.com/yohummus/yogi-core-go/config"
	"github.com/yohummus/yogi-core-go/protocol"
)

// Remote is the identity record of a peer, learned during info exchange.
type Remote struct {
	UUID        uuid.UUID
	Name        string
	Description string
	NetworkName string
	Path        string
	Hostname    string
	Pid         int
	StartTime   time.Time

	Timeout     config.Seconds
	AdvInterval config.Seconds
	GhostMode   bool

	TCPServerAddr string
	TCPServerPort uint16
}

// ParseInfoHeader validates the header of an info record and returns the
// peer UUID, its TCP server port and the body length that follows.
func ParseInfoHeader(hdr []byte) (uuid.UUID, uint16, liberr.Error) {
	if err := protocol.CheckVersionCompatibility(hdr); err != nil {
		return uuid.Nil, 0, err
	}

	return mustParseAdv(hdr)
}

func mustParseAdv(hdr []byte) (uuid.UUID, uint16, liberr.Error) {
	id, port, err := protocol.ParseAdvertisingMessage(hdr[:protocol.AdvertisingMessageSize])
	if err != nil {
		return uuid.Nil, 0, err
	}

	return id, port, nil
}

// ParseRemote decodes the body of an info record. The header must have
// passed ParseInfoHeader; peerAddr is the address the record arrived
// from, stripped of any zone.
func ParseRemote(hdr, body []byte, peerAddr net.Addr) (*Remote, liberr.Error) {
	id, port, err := ParseInfoHeader(hdr)
	if err != nil {
		return nil, err
	}

	r := &Remote{
		UUID:          id,
		TCPServerPort: port,
		TCPServerAddr: addrString(peerAddr),
	}

	var (
		n   int
		u   uint64
		off int
	)

	for _, dst := range []*string{&r.Name, &r.Description, &r.NetworkName, &r.Path, &r.Hostname} {
		if *dst, n, err = protocol.String(body[off:]); err != nil {
			return nil, ErrorDeserialize.Error(err)
		}
		off += n
	}

	if u, n, err = protocol.Varint(body[off:]); err != nil {
		return nil, ErrorDeserialize.Error(err)
	}
	r.Pid = int(u)
	off += n

	if u, n, err = protocol.Uint64(body[off:]); err != nil {
		return nil, ErrorDeserialize.Error(err)
	}
	r.StartTime = time.Unix(0, int64(u)).UTC()
	off += n

	if u, n, err = protocol.Uint64(body[off:]); err != nil {
		return nil, ErrorDeserialize.Error(err)
	}
	r.Timeout = durationFromWire(u)
	off += n

	if u, n, err = protocol.Uint64(body[off:]); err != nil {
		return nil, ErrorDeserialize.Error(err)
	}
	r.AdvInterval = durationFromWire(u)
	off += n

	var b bool
	if b, _, err = protocol.Bool(body[off:]); err != nil {
		return nil, ErrorDeserialize.Error(err)
	}
	r.GhostMode = b

	return r, nil
}

func durationFromWire(u uint64) config.Seconds {
	if u == protocol.InfiniteOnWire {
		return config.Seconds(config.Infinite)
	}

	if u > math.MaxInt64 {
		u = math.MaxInt64
	}

	return config.Seconds(time.Duration(u))
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}

	var host string

	switch v := a.(type) {
	case *net.TCPAddr:
		host = v.IP.String()
	case *net.UDPAddr:
		host = v.IP.String()
	default:
		host, _, _ = net.SplitHostPort(a.String())
	}

	return host
}

// ToJSON renders the snapshot of the remote branch.
func (r *Remote) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"uuid":                 r.UUID.String(),
		"name":                 r.Name,
		"description":          r.Description,
		"network_name":         r.NetworkName,
		"path":                 r.Path,
		"hostname":             r.Hostname,
		"pid":                  r.Pid,
		"tcp_server_address":   r.TCPServerAddr,
		"tcp_server_port":      r.TCPServerPort,
		"start_time":           r.StartTime.Format(timeFormat),
		"timeout":              r.Timeout.Float64(),
		"advertising_interval": r.AdvInterval.Float64(),
		"ghost_mode":           r.GhostMode,
	}
}

// MarshalJSON renders the snapshot as a JSON document.
func (r *Remote) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToJSON())
}
