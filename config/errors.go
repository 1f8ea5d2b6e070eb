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

package config

import (
	liberr "github.com/nabbar/golib/errors"

	"github.com/yohummus/yogi-core-go/protocol"
)

const (
	ErrorParamEmpty liberr.CodeError = iota + liberr.MinAvailable + 20
	ErrorParseJSON
	ErrorParseFile
	ErrorValidate
)

func init() {
	if liberr.ExistInMapMessage(ErrorParamEmpty) {
		panic("config error codes collide with an already registered range")
	}

	liberr.RegisterIdFctMessage(ErrorParamEmpty, getMessage)

	protocol.RegisterResultCode(ErrorParamEmpty, protocol.ErrInvalidParam)
	protocol.RegisterResultCode(ErrorParseJSON, protocol.ErrParsingJSONFailed)
	protocol.RegisterResultCode(ErrorParseFile, protocol.ErrParsingFileFailed)
	protocol.RegisterResultCode(ErrorValidate, protocol.ErrConfigNotValid)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorParamEmpty:
		return "at least one given parameter is empty or invalid"
	case ErrorParseJSON:
		return "parsing a JSON string failed"
	case ErrorParseFile:
		return "parsing a configuration file failed"
	case ErrorValidate:
		return "the configuration is not valid"
	}

	return liberr.NullMessage
}
