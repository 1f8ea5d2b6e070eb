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

package payload

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	liberr "github.com/nabbar/golib/errors"
)

// Encoding selects the representation of a user payload.
type Encoding int

const (
	// EncodingJSON is NUL-terminated JSON text.
	EncodingJSON Encoding = iota

	// EncodingMsgPack is raw MessagePack bytes.
	EncodingMsgPack
)

func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingMsgPack:
		return "msgpack"
	}

	return "unknown"
}

// ToMsgPack validates data in the given encoding and returns its
// MsgPack representation, which is what travels on the wire.
func ToMsgPack(data []byte, enc Encoding) ([]byte, liberr.Error) {
	switch enc {
	case EncodingJSON:
		txt := bytes.TrimSuffix(data, []byte{0})

		var v interface{}
		if err := json.Unmarshal(txt, &v); err != nil {
			return nil, ErrorParseJSON.Error(err)
		}

		raw, err := msgpack.Marshal(v)
		if err != nil {
			return nil, ErrorParseJSON.Error(err)
		}

		return raw, nil

	case EncodingMsgPack:
		var v interface{}
		if err := msgpack.Unmarshal(data, &v); err != nil {
			return nil, ErrorInvalidMsgPack.Error(err)
		}

		return data, nil
	}

	return nil, ErrorParamEmpty.Error(nil)
}

// FromMsgPack renders wire bytes into buf using the requested encoding
// and returns the number of bytes written. When buf is too small the
// result is a buffer-too-small error with buf partially filled: JSON
// output keeps its NUL terminator, MsgPack output is a plain cut.
func FromMsgPack(raw []byte, enc Encoding, buf []byte) (int, liberr.Error) {
	switch enc {
	case EncodingJSON:
		var v interface{}
		if err := msgpack.Unmarshal(raw, &v); err != nil {
			return 0, ErrorInvalidMsgPack.Error(err)
		}

		txt, err := json.Marshal(v)
		if err != nil {
			return 0, ErrorInvalidMsgPack.Error(err)
		}

		txt = append(txt, 0)

		if len(buf) < len(txt) {
			if len(buf) > 0 {
				copy(buf, txt[:len(buf)-1])
				buf[len(buf)-1] = 0
			}

			return len(buf), ErrorBufferTooSmall.Error(nil)
		}

		return copy(buf, txt), nil

	case EncodingMsgPack:
		if len(buf) < len(raw) {
			return copy(buf, raw), ErrorBufferTooSmall.Error(nil)
		}

		return copy(buf, raw), nil
	}

	return 0, ErrorParamEmpty.Error(nil)
}
