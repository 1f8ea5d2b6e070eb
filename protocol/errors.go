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

import liberr "github.com/nabbar/golib/errors"

const (
	ErrorParamEmpty liberr.CodeError = iota + liberr.MinAvailable
	ErrorInvalidMagicPrefix
	ErrorIncompatibleVersion
	ErrorDeserializeFailed
	ErrorPayloadTooLarge
	ErrorBufferTooSmall
)

func init() {
	if liberr.ExistInMapMessage(ErrorParamEmpty) {
		panic("protocol error codes collide with an already registered range")
	}

	liberr.RegisterIdFctMessage(ErrorParamEmpty, getMessage)

	RegisterResultCode(ErrorParamEmpty, ErrInvalidParam)
	RegisterResultCode(ErrorInvalidMagicPrefix, ErrInvalidMagicPrefix)
	RegisterResultCode(ErrorIncompatibleVersion, ErrIncompatibleVersion)
	RegisterResultCode(ErrorDeserializeFailed, ErrDeserializeMsgFailed)
	RegisterResultCode(ErrorPayloadTooLarge, ErrPayloadTooLarge)
	RegisterResultCode(ErrorBufferTooSmall, ErrBufferTooSmall)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorParamEmpty:
		return "at least one given parameter is empty or invalid"
	case ErrorInvalidMagicPrefix:
		return "the magic prefix sent when establishing a connection is wrong"
	case ErrorIncompatibleVersion:
		return "the local and remote branches use incompatible protocol versions"
	case ErrorDeserializeFailed:
		return "could not deserialize a message"
	case ErrorPayloadTooLarge:
		return "message payload is too large"
	case ErrorBufferTooSmall:
		return "the supplied buffer is too small"
	}

	return liberr.NullMessage
}
