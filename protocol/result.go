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
	"sync"

	liberr "github.com/nabbar/golib/errors"
)

// ResultCode is the stable code surfaced to embedders. Zero means success,
// negative values are errors. The values never change between releases.
type ResultCode int

const (
	OK ResultCode = 0

	ErrUnknown                         ResultCode = -1
	ErrObjectStillUsed                 ResultCode = -2
	ErrBadAlloc                        ResultCode = -3
	ErrInvalidParam                    ResultCode = -4
	ErrInvalidHandle                   ResultCode = -5
	ErrWrongObjectType                 ResultCode = -6
	ErrCanceled                        ResultCode = -7
	ErrBusy                            ResultCode = -8
	ErrTimeout                         ResultCode = -9
	ErrTimerExpired                    ResultCode = -10
	ErrBufferTooSmall                  ResultCode = -11
	ErrOpenSocketFailed                ResultCode = -12
	ErrBindSocketFailed                ResultCode = -13
	ErrListenSocketFailed              ResultCode = -14
	ErrSetSocketOptionFailed           ResultCode = -15
	ErrInvalidRegex                    ResultCode = -16
	ErrOpenFileFailed                  ResultCode = -17
	ErrRwSocketFailed                  ResultCode = -18
	ErrConnectSocketFailed             ResultCode = -19
	ErrInvalidMagicPrefix              ResultCode = -20
	ErrIncompatibleVersion             ResultCode = -21
	ErrDeserializeMsgFailed            ResultCode = -22
	ErrAcceptSocketFailed              ResultCode = -23
	ErrLoopbackConnection              ResultCode = -24
	ErrPasswordMismatch                ResultCode = -25
	ErrNetNameMismatch                 ResultCode = -26
	ErrDuplicateBranchName             ResultCode = -27
	ErrDuplicateBranchPath             ResultCode = -28
	ErrPayloadTooLarge                 ResultCode = -29
	ErrParsingCmdlineFailed            ResultCode = -30
	ErrParsingJSONFailed               ResultCode = -31
	ErrParsingFileFailed               ResultCode = -32
	ErrConfigNotValid                  ResultCode = -33
	ErrHelpRequested                   ResultCode = -34
	ErrWriteToFileFailed               ResultCode = -35
	ErrUndefinedVariables              ResultCode = -36
	ErrNoVariableSupport               ResultCode = -37
	ErrVariableUsedInKey               ResultCode = -38
	ErrInvalidTimeFormat               ResultCode = -39
	ErrParsingTimeFailed               ResultCode = -40
	ErrTxQueueFull                     ResultCode = -41
	ErrInvalidOperationID              ResultCode = -42
	ErrOperationNotRunning             ResultCode = -43
	ErrInvalidUserMsgPack              ResultCode = -44
	ErrJoinMulticastGroupFailed        ResultCode = -45
	ErrEnumerateNetworkInterfacesFailed ResultCode = -46
)

// Description returns the human readable text associated with the code.
// The text is informational; embedders must only rely on the code value.
func (c ResultCode) Description() string {
	switch c {
	case OK:
		return "Success"
	case ErrUnknown:
		return "Unknown internal error"
	case ErrObjectStillUsed:
		return "Object is still being used by another object"
	case ErrBadAlloc:
		return "Memory allocation failed"
	case ErrInvalidParam:
		return "Invalid parameter"
	case ErrInvalidHandle:
		return "Invalid handle"
	case ErrWrongObjectType:
		return "Wrong object type"
	case ErrCanceled:
		return "Operation has been canceled"
	case ErrBusy:
		return "Object is busy"
	case ErrTimeout:
		return "The operation timed out"
	case ErrTimerExpired:
		return "The timer has not been started or already expired"
	case ErrBufferTooSmall:
		return "The supplied buffer is too small"
	case ErrOpenSocketFailed:
		return "Could not open a socket"
	case ErrBindSocketFailed:
		return "Could not bind a socket"
	case ErrListenSocketFailed:
		return "Could not listen on socket"
	case ErrSetSocketOptionFailed:
		return "Could not set a socket option"
	case ErrInvalidRegex:
		return "Invalid regular expression"
	case ErrOpenFileFailed:
		return "Could not open file"
	case ErrRwSocketFailed:
		return "Could not read from or write to socket"
	case ErrConnectSocketFailed:
		return "Could not connect a socket"
	case ErrInvalidMagicPrefix:
		return "The magic prefix sent when establishing a connection is wrong"
	case ErrIncompatibleVersion:
		return "The local and remote branches use incompatible Yogi versions"
	case ErrDeserializeMsgFailed:
		return "Could not deserialize a message"
	case ErrAcceptSocketFailed:
		return "Could not accept a socket"
	case ErrLoopbackConnection:
		return "Attempting to connect branch to itself"
	case ErrPasswordMismatch:
		return "The passwords of the local and remote branch don't match"
	case ErrNetNameMismatch:
		return "The net names of the local and remote branch don't match"
	case ErrDuplicateBranchName:
		return "A branch with the same name is already active"
	case ErrDuplicateBranchPath:
		return "A branch with the same path is already active"
	case ErrPayloadTooLarge:
		return "Message payload is too large"
	case ErrParsingCmdlineFailed:
		return "Parsing the command line failed"
	case ErrParsingJSONFailed:
		return "Parsing a JSON string failed"
	case ErrParsingFileFailed:
		return "Parsing a configuration file failed"
	case ErrConfigNotValid:
		return "The configuration is not valid"
	case ErrHelpRequested:
		return "Help/usage text requested"
	case ErrWriteToFileFailed:
		return "Could not write to file"
	case ErrUndefinedVariables:
		return "One or more configuration variables are undefined or could not be resolved"
	case ErrNoVariableSupport:
		return "Support for configuration variables has been disabled"
	case ErrVariableUsedInKey:
		return "A configuration variable has been used in a key"
	case ErrInvalidTimeFormat:
		return "Invalid time format"
	case ErrParsingTimeFailed:
		return "Could not parse time string"
	case ErrTxQueueFull:
		return "A send queue for a remote branch is full"
	case ErrInvalidOperationID:
		return "Invalid operation ID"
	case ErrOperationNotRunning:
		return "Operation is not running"
	case ErrInvalidUserMsgPack:
		return "User-supplied data is not valid MessagePack"
	case ErrJoinMulticastGroupFailed:
		return "Joining UDP multicast group failed"
	case ErrEnumerateNetworkInterfacesFailed:
		return "Enumerating network interfaces failed"
	}

	return "Invalid error code"
}

func (c ResultCode) IsSuccess() bool {
	return c >= OK
}

func (c ResultCode) IsError() bool {
	return c < OK
}

func (c ResultCode) String() string {
	return c.Description()
}

var (
	mapMut sync.RWMutex
	mapRes = make(map[liberr.CodeError]ResultCode)
)

// RegisterResultCode binds a golib error code to the stable result code
// surfaced for it. Packages of this module call it from init().
func RegisterResultCode(code liberr.CodeError, res ResultCode) {
	mapMut.Lock()
	defer mapMut.Unlock()

	mapRes[code] = res
}

// ResultFromError walks err and its parents and returns the stable result
// code of the first registered golib code found. A nil error maps to OK,
// an unregistered one to ErrUnknown.
func ResultFromError(err error) ResultCode {
	if err == nil {
		return OK
	}

	e, ok := err.(liberr.Error)
	if !ok {
		return ErrUnknown
	}

	mapMut.RLock()
	defer mapMut.RUnlock()

	for _, c := range e.GetParentCode() {
		if r, k := mapRes[c]; k {
			return r
		}
	}

	return ErrUnknown
}
