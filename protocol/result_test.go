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

// result_test.go pins the stable result codes: their values must never
// change between releases, and the mapping from internal error codes to
// stable codes must survive error wrapping.
package protocol_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/yohummus/yogi-core-go/protocol"
)

var _ = Describe("Result codes", func() {
	It("should keep the documented stable values", func() {
		Expect(int(OK)).To(Equal(0))
		Expect(int(ErrCanceled)).To(Equal(-7))
		Expect(int(ErrTimeout)).To(Equal(-9))
		Expect(int(ErrBufferTooSmall)).To(Equal(-11))
		Expect(int(ErrInvalidMagicPrefix)).To(Equal(-20))
		Expect(int(ErrIncompatibleVersion)).To(Equal(-21))
		Expect(int(ErrLoopbackConnection)).To(Equal(-24))
		Expect(int(ErrPasswordMismatch)).To(Equal(-25))
		Expect(int(ErrNetNameMismatch)).To(Equal(-26))
		Expect(int(ErrDuplicateBranchName)).To(Equal(-27))
		Expect(int(ErrDuplicateBranchPath)).To(Equal(-28))
		Expect(int(ErrPayloadTooLarge)).To(Equal(-29))
		Expect(int(ErrTxQueueFull)).To(Equal(-41))
		Expect(int(ErrInvalidOperationID)).To(Equal(-42))
		Expect(int(ErrInvalidUserMsgPack)).To(Equal(-44))
		Expect(int(ErrJoinMulticastGroupFailed)).To(Equal(-45))
		Expect(int(ErrEnumerateNetworkInterfacesFailed)).To(Equal(-46))
	})

	It("should describe success and errors", func() {
		Expect(OK.Description()).To(Equal("Success"))
		Expect(OK.IsSuccess()).To(BeTrue())
		Expect(ErrTimeout.Description()).To(Equal("The operation timed out"))
		Expect(ErrTimeout.IsError()).To(BeTrue())
	})

	Context("mapping from internal errors", func() {
		It("should map nil to OK", func() {
			Expect(ResultFromError(nil)).To(Equal(OK))
		})

		It("should map plain errors to the unknown error", func() {
			Expect(ResultFromError(errors.New("boom"))).To(Equal(ErrUnknown))
		})

		It("should map registered package codes to their stable code", func() {
			Expect(ResultFromError(ErrorInvalidMagicPrefix.Error(nil))).To(Equal(ErrInvalidMagicPrefix))
			Expect(ResultFromError(ErrorIncompatibleVersion.Error(nil))).To(Equal(ErrIncompatibleVersion))
			Expect(ResultFromError(ErrorPayloadTooLarge.Error(nil))).To(Equal(ErrPayloadTooLarge))
		})

		It("should find the stable code through parent chains", func() {
			wrapped := ErrorDeserializeFailed.Error(errors.New("inner cause"))
			Expect(ResultFromError(wrapped)).To(Equal(ErrDeserializeMsgFailed))
		})
	})
})
