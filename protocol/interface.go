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

package protocol

import (
	"time"

	libsiz "github.com/nabbar/golib/size"
)

const (
	// Version is the library version string.
	Version = "0.0.3"

	// VersionMajor must be equal on both peers of a connection.
	VersionMajor = 0

	// VersionMinor of the remote peer must be greater than or equal to the
	// local one for the peers to be compatible.
	VersionMinor = 0

	// VersionPatch has no influence on compatibility.
	VersionPatch = 3
)

// Magic is the prefix of every advertisement datagram and info record.
const Magic = "YOGI\x00"

const (
	// AdvertisingMessageSize is the exact length of an advertisement
	// datagram: magic, major, minor, UUID and TCP server port.
	AdvertisingMessageSize = len(Magic) + 2 + 16 + 2

	// MaxMessagePayloadSize bounds the body of a single session frame.
	MaxMessagePayloadSize = 32768

	// ChallengeSize is the number of random bytes sent during
	// authentication.
	ChallengeSize = 8

	// SolutionSize is the length of the SHA-256 based challenge solution.
	SolutionSize = 32
)

const (
	MinTxQueueSize     libsiz.Size = 35000
	MaxTxQueueSize     libsiz.Size = 10000000
	DefaultTxQueueSize             = MinTxQueueSize

	MinRxQueueSize     libsiz.Size = 35000
	MaxRxQueueSize     libsiz.Size = 10000000
	DefaultRxQueueSize             = MinRxQueueSize
)

const (
	DefaultAdvAddress        = "ff02::8000:2439"
	DefaultAdvPort           = 13531
	DefaultAdvInterval       = time.Second
	DefaultConnectionTimeout = 3 * time.Second
)

// InfiniteOnWire encodes an infinite duration inside an info record.
const InfiniteOnWire = ^uint64(0)

// MessageType tags the first byte of a non-empty session frame.
type MessageType uint8

const (
	// MessageTypeHeartbeat is unused once framing is in place: heartbeats
	// travel as empty frames. The value is reserved so that the tag space
	// matches the wire documentation.
	MessageTypeHeartbeat MessageType = iota

	// MessageTypeAcknowledge confirms receipt of a broadcast.
	MessageTypeAcknowledge

	// MessageTypeBroadcast carries a MsgPack-encoded user payload.
	MessageTypeBroadcast
)

func (m MessageType) String() string {
	switch m {
	case MessageTypeHeartbeat:
		return "heartbeat"
	case MessageTypeAcknowledge:
		return "acknowledge"
	case MessageTypeBroadcast:
		return "broadcast"
	}

	return "unknown"
}
