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

// advertise_test.go verifies the advertisement datagram codec: layout,
// size, round-trip fidelity and the header checks that make foreign or
// incompatible datagrams droppable.
package protocol_test

import (
	"github.com/google/uuid"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/yohummus/yogi-core-go/protocol"
)

var _ = Describe("Advertisement datagram", func() {
	var (
		id  uuid.UUID
		msg []byte
	)

	BeforeEach(func() {
		id = uuid.New()
		msg = MakeAdvertisingMessage(id, 18734)
	})

	Context("layout", func() {
		It("should have the documented size", func() {
			Expect(msg).To(HaveLen(AdvertisingMessageSize))
		})

		It("should start with the magic prefix", func() {
			Expect(string(msg[:5])).To(Equal(Magic))
		})

		It("should carry the protocol version pair", func() {
			Expect(msg[5]).To(Equal(uint8(VersionMajor)))
			Expect(msg[6]).To(Equal(uint8(VersionMinor)))
		})

		It("should carry the port in network byte order", func() {
			Expect(msg[23]).To(Equal(uint8(18734 >> 8)))
			Expect(msg[24]).To(Equal(uint8(18734 & 0xff)))
		})
	})

	Context("round trip", func() {
		It("should yield the same uuid and port", func() {
			gotID, gotPort, err := ParseAdvertisingMessage(msg)

			Expect(err).ToNot(HaveOccurred())
			Expect(gotID).To(Equal(id))
			Expect(gotPort).To(Equal(uint16(18734)))
		})
	})

	Context("validation", func() {
		It("should reject a foreign magic prefix", func() {
			msg[0] = 'X'

			_, _, err := ParseAdvertisingMessage(msg)
			Expect(err).To(HaveOccurred())
			Expect(err.IsCode(ErrorInvalidMagicPrefix)).To(BeTrue())
		})

		It("should reject a different major version", func() {
			msg[5] = VersionMajor + 1

			_, _, err := ParseAdvertisingMessage(msg)
			Expect(err).To(HaveOccurred())
			Expect(err.IsCode(ErrorIncompatibleVersion)).To(BeTrue())
		})

		It("should reject a truncated datagram", func() {
			_, _, err := ParseAdvertisingMessage(msg[:10])
			Expect(err).To(HaveOccurred())
		})

		It("should accept a peer with a higher minor version", func() {
			msg[6] = VersionMinor + 7
			Expect(CheckVersionCompatibility(msg)).To(Succeed())
		})
	})
})
