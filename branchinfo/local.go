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
	"time"

	"github.com/google/uuid"

	liberr "github.com/nabbar/golib/errors"

	"github.com/yohummus/yogi-core-go/config"
	"github.com/yohummus/yogi-core-go/protocol"
)

// timeFormat renders start times the way snapshots document them.
const timeFormat = "2006-01-02T15:04:05.000Z"

// Local is the identity record of the local branch. It is immutable
// after creation.
type Local struct {
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

	AdvAddress    string
	AdvPort       uint16
	AdvInterfaces []string

	TCPServerPort uint16

	TxQueueSize         config.Bytes
	RxQueueSize         config.Bytes
	TransceiveByteLimit config.Bytes

	PasswordHash []byte

	advMsg  []byte
	infoMsg []byte
}

// NewLocal builds the local record from a completed configuration and
// the TCP port the listener actually bound.
func NewLocal(cfg *config.Branch, tcpPort uint16) (*Local, liberr.Error) {
	if cfg == nil || tcpPort == 0 {
		return nil, ErrorParamEmpty.Error(nil)
	}

	l := &Local{
		UUID:                uuid.New(),
		Name:                cfg.Name,
		Description:         cfg.Description,
		NetworkName:         cfg.NetworkName,
		Path:                cfg.Path,
		Hostname:            cfg.Hostname(),
		Pid:                 cfg.Pid(),
		StartTime:           time.Now().UTC(),
		Timeout:             cfg.Timeout,
		AdvInterval:         cfg.AdvertisingInterval,
		GhostMode:           cfg.GhostMode,
		AdvAddress:          cfg.AdvertisingAddress,
		AdvPort:             cfg.AdvertisingPort,
		AdvInterfaces:       cfg.AdvertisingInterfaces,
		TCPServerPort:       tcpPort,
		TxQueueSize:         cfg.TxQueueSize,
		RxQueueSize:         cfg.RxQueueSize,
		TransceiveByteLimit: cfg.TransceiveByteLimit,
		PasswordHash:        protocol.HashPassword(cfg.NetworkPassword),
	}

	l.populateMessages()
	return l, nil
}

// populateMessages precomputes the advertisement datagram and the info
// record, which never change for the lifetime of the branch.
func (l *Local) populateMessages() {
	l.advMsg = protocol.MakeAdvertisingMessage(l.UUID, l.TCPServerPort)

	body := make([]byte, 0, 256)
	body = protocol.AppendString(body, l.Name)
	body = protocol.AppendString(body, l.Description)
	body = protocol.AppendString(body, l.NetworkName)
	body = protocol.AppendString(body, l.Path)
	body = protocol.AppendString(body, l.Hostname)
	body = protocol.AppendVarint(body, uint64(l.Pid))
	body = protocol.AppendUint64(body, uint64(l.StartTime.UnixNano()))
	body = protocol.AppendUint64(body, durationOnWire(l.Timeout))
	body = protocol.AppendUint64(body, durationOnWire(l.AdvInterval))
	body = protocol.AppendBool(body, l.GhostMode)

	msg := make([]byte, 0, len(l.advMsg)+protocol.MaxVarintLen+len(body))
	msg = append(msg, l.advMsg...)
	msg = protocol.AppendVarint(msg, uint64(len(body)))
	msg = append(msg, body...)

	l.infoMsg = msg
}

func durationOnWire(d config.Seconds) uint64 {
	if d.IsInfinite() {
		return protocol.InfiniteOnWire
	}

	return uint64(d.Time().Nanoseconds())
}

// AdvertisingMessage returns the datagram announcing this branch.
func (l *Local) AdvertisingMessage() []byte {
	return l.advMsg
}

// InfoMessage returns the info record sent during info exchange.
func (l *Local) InfoMessage() []byte {
	return l.infoMsg
}

// ToJSON renders the snapshot of the local branch.
func (l *Local) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"uuid":                   l.UUID.String(),
		"name":                   l.Name,
		"description":            l.Description,
		"network_name":           l.NetworkName,
		"path":                   l.Path,
		"hostname":               l.Hostname,
		"pid":                    l.Pid,
		"tcp_server_port":        l.TCPServerPort,
		"start_time":             l.StartTime.Format(timeFormat),
		"timeout":                l.Timeout.Float64(),
		"advertising_interval":   l.AdvInterval.Float64(),
		"ghost_mode":             l.GhostMode,
		"advertising_interfaces": l.AdvInterfaces,
		"advertising_address":    l.AdvAddress,
		"advertising_port":       l.AdvPort,
		"tx_queue_size":          l.TxQueueSize.Int(),
		"rx_queue_size":          l.RxQueueSize.Int(),
	}
}

// MarshalJSON renders the snapshot as a JSON document.
func (l *Local) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.ToJSON())
}
