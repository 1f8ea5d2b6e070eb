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
	"bytes"

	"github.com/google/uuid"

	liberr "github.com/nabbar/golib/errors"
)

// MakeAdvertisingMessage builds the fixed-size datagram announcing the
// given branch UUID and TCP server port.
func MakeAdvertisingMessage(id uuid.UUID, tcpPort uint16) []byte {
	buf := make([]byte, 0, AdvertisingMessageSize)
	buf = append(buf, Magic...)
	buf = append(buf, VersionMajor, VersionMinor)
	buf = append(buf, id[:]...)
	buf = AppendUint16(buf, tcpPort)

	return buf
}

// CheckMagicPrefixAndVersion validates the shared header of advertisement
// datagrams and info records. Datagrams with a foreign magic prefix or a
// different protocol major version must be dropped.
func CheckMagicPrefixAndVersion(msg []byte) liberr.Error {
	if len(msg) < AdvertisingMessageSize {
		return ErrorDeserializeFailed.Error(nil)
	}

	if !bytes.Equal(msg[:len(Magic)], []byte(Magic)) {
		return ErrorInvalidMagicPrefix.Error(nil)
	}

	if msg[len(Magic)] != VersionMajor {
		return ErrorIncompatibleVersion.Error(nil)
	}

	return nil
}

// ParseAdvertisingMessage validates and decodes an advertisement datagram.
func ParseAdvertisingMessage(msg []byte) (uuid.UUID, uint16, liberr.Error) {
	if len(msg) != AdvertisingMessageSize {
		return uuid.Nil, 0, ErrorDeserializeFailed.Error(nil)
	}

	if err := CheckMagicPrefixAndVersion(msg); err != nil {
		return uuid.Nil, 0, err
	}

	var id uuid.UUID
	copy(id[:], msg[len(Magic)+2:len(Magic)+18])

	port, _, err := Uint16(msg[len(Magic)+18:])
	if err != nil {
		return uuid.Nil, 0, err
	}

	return id, port, nil
}

// RemoteVersionMinor extracts the minor version carried by a validated
// header. Compatibility requires the remote minor to be at least the
// local one.
func RemoteVersionMinor(msg []byte) uint8 {
	return msg[len(Magic)+1]
}

// CheckVersionCompatibility verifies the full major/minor rule against a
// validated header.
func CheckVersionCompatibility(msg []byte) liberr.Error {
	if err := CheckMagicPrefixAndVersion(msg); err != nil {
		return err
	}

	if RemoteVersionMinor(msg) < VersionMinor {
		return ErrorIncompatibleVersion.Error(nil)
	}

	return nil
}
