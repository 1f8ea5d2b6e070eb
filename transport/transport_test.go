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

// transport_test.go exercises the framed transport over socket pairs:
// full reads and writes, byte limiting, the inactivity watchdog and
// cancellation on Close.
package transport_test

import (
	"bytes"
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/yohummus/yogi-core-go/transport"
)

// pipePair builds a connected transport pair over an in-memory duplex.
func pipePair(opt Options) (Transport, Transport) {
	ca, cb := net.Pipe()
	return New(ca, false, opt), New(cb, true, opt)
}

var _ = Describe("Framed transport", func() {
	Context("reads and writes", func() {
		It("should transfer a buffer completely", func() {
			a, b := pipePair(Options{})
			defer a.Close()
			defer b.Close()

			src := bytes.Repeat([]byte{0xab}, 4096)

			go func() {
				defer GinkgoRecover()
				Expect(a.WriteFull(src)).To(Succeed())
			}()

			dst := make([]byte, len(src))
			Expect(b.ReadFull(dst)).To(Succeed())
			Expect(dst).To(Equal(src))
		})

		It("should honor the transceive byte limit", func() {
			a, b := pipePair(Options{ByteLimit: 7})
			defer a.Close()
			defer b.Close()

			src := bytes.Repeat([]byte{0x42}, 100)

			go func() {
				defer GinkgoRecover()
				Expect(a.WriteFull(src)).To(Succeed())
			}()

			dst := make([]byte, len(src))
			Expect(b.ReadFull(dst)).To(Succeed())
			Expect(dst).To(Equal(src))
		})

		It("should report the creation direction", func() {
			a, b := pipePair(Options{})
			defer a.Close()
			defer b.Close()

			Expect(a.CreatedByInbound()).To(BeFalse())
			Expect(b.CreatedByInbound()).To(BeTrue())
		})
	})

	Context("inactivity watchdog", func() {
		It("should kill an idle transport with a timeout error", func() {
			a, b := pipePair(Options{Timeout: 50 * time.Millisecond})
			defer a.Close()
			defer b.Close()

			Eventually(a.Failed(), time.Second).Should(BeClosed())

			err := a.Err()
			Expect(err).To(HaveOccurred())
			Expect(err.IsCode(ErrorTimeout)).To(BeTrue())
		})

		It("should fail blocked operations with the timeout error", func() {
			a, b := pipePair(Options{Timeout: 50 * time.Millisecond})
			defer a.Close()
			defer b.Close()

			dst := make([]byte, 8)
			err := a.ReadFull(dst)

			Expect(err).To(HaveOccurred())
			Expect(err.IsCode(ErrorTimeout) || err.IsCode(ErrorReadWriteFailed)).To(BeTrue())
			Expect(a.Err().IsCode(ErrorTimeout)).To(BeTrue())
		})

		It("should stay alive while traffic flows", func() {
			a, b := pipePair(Options{Timeout: 200 * time.Millisecond})
			defer a.Close()
			defer b.Close()

			stop := make(chan struct{})
			go func() {
				buf := make([]byte, 1)
				for {
					select {
					case <-stop:
						return
					default:
					}

					if b.ReadFull(buf) != nil {
						return
					}
				}
			}()

			for i := 0; i < 5; i++ {
				time.Sleep(100 * time.Millisecond)
				Expect(a.WriteFull([]byte{1})).To(Succeed())
			}

			Expect(a.Err()).ToNot(HaveOccurred())
			close(stop)
		})
	})

	Context("close", func() {
		It("should fail with a canceled error", func() {
			a, b := pipePair(Options{})
			defer b.Close()

			Expect(a.Close()).To(Succeed())

			Eventually(a.Failed(), time.Second).Should(BeClosed())
			Expect(a.Err().IsCode(ErrorCanceled)).To(BeTrue())
		})

		It("should keep the first error on double close", func() {
			a, b := pipePair(Options{Timeout: 20 * time.Millisecond})
			defer b.Close()

			Eventually(a.Failed(), time.Second).Should(BeClosed())
			_ = a.Close()

			Expect(a.Err().IsCode(ErrorTimeout)).To(BeTrue())
		})
	})

	Context("dial", func() {
		It("should fail on an unreachable endpoint", func() {
			_, err := Dial(context.Background(), "127.0.0.1:1", Options{Timeout: 200 * time.Millisecond})
			Expect(err).To(HaveOccurred())
			Expect(err.IsCode(ErrorConnectFailed)).To(BeTrue())
		})

		It("should reject an empty address", func() {
			_, err := Dial(context.Background(), "", Options{})
			Expect(err).To(HaveOccurred())
			Expect(err.IsCode(ErrorParamEmpty)).To(BeTrue())
		})
	})
})
