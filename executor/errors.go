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

package executor

import (
	liberr "github.com/nabbar/golib/errors"

	"github.com/yohummus/yogi-core-go/protocol"
)

const (
	ErrorCanceled liberr.CodeError = iota + liberr.MinAvailable + 40
	ErrorBusy
	ErrorClosed
)

func init() {
	if liberr.ExistInMapMessage(ErrorCanceled) {
		panic("executor error codes collide with an already registered range")
	}

	liberr.RegisterIdFctMessage(ErrorCanceled, getMessage)

	protocol.RegisterResultCode(ErrorCanceled, protocol.ErrCanceled)
	protocol.RegisterResultCode(ErrorBusy, protocol.ErrBusy)
	protocol.RegisterResultCode(ErrorClosed, protocol.ErrCanceled)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorCanceled:
		return "operation has been canceled"
	case ErrorBusy:
		return "executor is busy"
	case ErrorClosed:
		return "executor has been closed"
	}

	return liberr.NullMessage
}
