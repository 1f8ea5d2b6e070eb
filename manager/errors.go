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

package manager

import (
	liberr "github.com/nabbar/golib/errors"

	"github.com/yohummus/yogi-core-go/protocol"
)

const (
	ErrorParamEmpty liberr.CodeError = iota + liberr.MinAvailable + 180
	ErrorNetNameMismatch
	ErrorDuplicateBranchName
	ErrorDuplicateBranchPath
	ErrorCanceled
	ErrorNotRunning
)

func init() {
	if liberr.ExistInMapMessage(ErrorParamEmpty) {
		panic("manager error codes collide with an already registered range")
	}

	liberr.RegisterIdFctMessage(ErrorParamEmpty, getMessage)

	protocol.RegisterResultCode(ErrorParamEmpty, protocol.ErrInvalidParam)
	protocol.RegisterResultCode(ErrorNetNameMismatch, protocol.ErrNetNameMismatch)
	protocol.RegisterResultCode(ErrorDuplicateBranchName, protocol.ErrDuplicateBranchName)
	protocol.RegisterResultCode(ErrorDuplicateBranchPath, protocol.ErrDuplicateBranchPath)
	protocol.RegisterResultCode(ErrorCanceled, protocol.ErrCanceled)
	protocol.RegisterResultCode(ErrorNotRunning, protocol.ErrOperationNotRunning)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorParamEmpty:
		return "at least one given parameter is empty or invalid"
	case ErrorNetNameMismatch:
		return "the net names of the local and remote branch don't match"
	case ErrorDuplicateBranchName:
		return "a branch with the same name is already active"
	case ErrorDuplicateBranchPath:
		return "a branch with the same path is already active"
	case ErrorCanceled:
		return "operation has been canceled"
	case ErrorNotRunning:
		return "the connection manager is not running"
	}

	return liberr.NullMessage
}
