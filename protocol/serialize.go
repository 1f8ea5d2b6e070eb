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
	"encoding/binary"
	"io"

	liberr "github.com/nabbar/golib/errors"
)

// MaxVarintLen is the worst-case length of an encoded unsigned varint.
const MaxVarintLen = binary.MaxVarintLen64

// AppendVarint appends the unsigned LEB128 encoding of v to dst.
func AppendVarint(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}

// Varint decodes an unsigned LEB128 value from the front of src and
// returns the value and the number of bytes consumed.
func Varint(src []byte) (uint64, int, liberr.Error) {
	v, n := binary.Uvarint(src)
	if n <= 0 {
		return 0, 0, ErrorDeserializeFailed.Error(nil)
	}

	return v, n, nil
}

// ReadVarint reads an unsigned LEB128 value byte by byte from r.
func ReadVarint(r io.ByteReader) (uint64, liberr.Error) {
	v, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, ErrorDeserializeFailed.Error(err)
	}

	return v, nil
}

// AppendString appends a varint length prefix followed by the UTF-8 bytes.
func AppendString(dst []byte, s string) []byte {
	dst = AppendVarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// String decodes a varint length-prefixed string from the front of src.
func String(src []byte) (string, int, liberr.Error) {
	l, n, err := Varint(src)
	if err != nil {
		return "", 0, err
	}

	if uint64(len(src)-n) < l {
		return "", 0, ErrorDeserializeFailed.Error(nil)
	}

	return string(src[n : n+int(l)]), n + int(l), nil
}

// AppendUint64 appends v in big-endian byte order.
func AppendUint64(dst []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(dst, v)
}

// Uint64 decodes a big-endian uint64 from the front of src.
func Uint64(src []byte) (uint64, int, liberr.Error) {
	if len(src) < 8 {
		return 0, 0, ErrorDeserializeFailed.Error(nil)
	}

	return binary.BigEndian.Uint64(src), 8, nil
}

// AppendUint16 appends v in big-endian byte order.
func AppendUint16(dst []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(dst, v)
}

// Uint16 decodes a big-endian uint16 from the front of src.
func Uint16(src []byte) (uint16, int, liberr.Error) {
	if len(src) < 2 {
		return 0, 0, ErrorDeserializeFailed.Error(nil)
	}

	return binary.BigEndian.Uint16(src), 2, nil
}

// AppendBool appends a single 0/1 byte.
func AppendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 1)
	}

	return append(dst, 0)
}

// Bool decodes a single 0/1 byte from the front of src.
func Bool(src []byte) (bool, int, liberr.Error) {
	if len(src) < 1 {
		return false, 0, ErrorDeserializeFailed.Error(nil)
	}

	return src[0] != 0, 1, nil
}
