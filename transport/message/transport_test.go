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

// transport_test.go exercises whole-message semantics over an in-memory
// duplex: ordered delivery, backpressure in both retry modes, operation
// cancellation and death propagation.
package message_test

import (
	"bytes"
	"net"
	"sync"
	"time"

	liberr "github.com/nabbar/golib/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/yohummus/yogi-core-go/transport"
	. "github.com/yohummus/yogi-core-go/transport/message"
)

// collector accumulates delivered messages.
type collector struct {
	mux  sync.Mutex
	msgs [][]byte
}

func (c *collector) add(msg []byte) {
	c.mux.Lock()
	defer c.mux.Unlock()

	cp := make([]byte, len(msg))
	copy(cp, msg)
	c.msgs = append(c.msgs, cp)
}

func (c *collector) snapshot() [][]byte {
	c.mux.Lock()
	defer c.mux.Unlock()

	return append([][]byte(nil), c.msgs...)
}

func pair(opt Options) (Transport, Transport, transport.Transport, transport.Transport) {
	ca, cb := net.Pipe()

	ta := transport.New(ca, false, transport.Options{})
	tb := transport.New(cb, true, transport.Options{})

	return New(ta, opt), New(tb, opt), ta, tb
}

var defaultOpt = Options{TxQueueSize: 4096, RxQueueSize: 4096, Timeout: time.Second}

var _ = Describe("Message transport", func() {
	Context("delivery", func() {
		It("should deliver messages whole and in order", func() {
			a, b, _, _ := pair(defaultOpt)
			defer a.Close()
			defer b.Close()

			got := &collector{}

			a.Start(nil, nil)
			b.Start(got.add, nil)

			want := [][]byte{
				[]byte("first"),
				[]byte("second message"),
				bytes.Repeat([]byte{0x55}, 1000),
			}

			for _, msg := range want {
				done := make(chan liberr.Error, 1)
				a.SendAsync(msg, true, func(err liberr.Error) { done <- err })
				Eventually(done, time.Second).Should(Receive(BeNil()))
			}

			Eventually(func() int { return len(got.snapshot()) }, 2*time.Second).Should(Equal(3))
			Expect(got.snapshot()).To(Equal(want))
		})

		It("should reject an oversized payload", func() {
			a, b, _, _ := pair(defaultOpt)
			defer a.Close()
			defer b.Close()

			a.Start(nil, nil)
			b.Start(nil, nil)

			done := make(chan liberr.Error, 1)
			a.SendAsync(make([]byte, 40000), false, func(err liberr.Error) { done <- err })

			var err liberr.Error
			Eventually(done, time.Second).Should(Receive(&err))
			Expect(err.IsCode(ErrorPayloadTooLarge)).To(BeTrue())
		})
	})

	Context("backpressure", func() {
		// queueFiller floods the transport until the queue cannot take
		// one more copy of the frame.
		queueFiller := func(t Transport, msg []byte) {
			for {
				done := make(chan liberr.Error, 1)
				t.SendAsync(msg, false, func(err liberr.Error) { done <- err })

				var err liberr.Error
				Eventually(done, time.Second).Should(Receive(&err))

				if err != nil {
					Expect(err.IsCode(ErrorTxQueueFull)).To(BeTrue())
					return
				}
			}
		}

		It("should fail without retry once the queue is full", func() {
			opt := Options{TxQueueSize: 600, RxQueueSize: 4096, Timeout: time.Minute}

			a, _, _, _ := pair(opt)
			defer a.Close()

			// the peer never starts, so nothing drains
			a.Start(nil, nil)

			queueFiller(a, bytes.Repeat([]byte{1}, 100))
		})

		It("should park a retry send and complete it once the queue drains", func() {
			opt := Options{TxQueueSize: 600, RxQueueSize: 4096, Timeout: time.Minute}

			a, b, _, _ := pair(opt)
			defer a.Close()
			defer b.Close()

			a.Start(nil, nil)
			queueFiller(a, bytes.Repeat([]byte{1}, 100))

			parked := make(chan liberr.Error, 1)
			a.SendAsync(bytes.Repeat([]byte{2}, 100), true, func(err liberr.Error) { parked <- err })

			Consistently(parked, 100*time.Millisecond).ShouldNot(Receive())

			// the peer comes alive and drains the queue
			got := &collector{}
			b.Start(got.add, nil)

			Eventually(parked, 2*time.Second).Should(Receive(BeNil()))
		})
	})

	Context("cancellation", func() {
		It("should cancel a parked send exactly once", func() {
			opt := Options{TxQueueSize: 600, RxQueueSize: 4096, Timeout: time.Minute}

			a, _, _, _ := pair(opt)
			defer a.Close()

			a.Start(nil, nil)

			// fill the queue so the next send parks
			for {
				done := make(chan liberr.Error, 1)
				a.SendAsync(bytes.Repeat([]byte{1}, 100), false, func(err liberr.Error) { done <- err })

				var err liberr.Error
				Eventually(done, time.Second).Should(Receive(&err))
				if err != nil {
					break
				}
			}

			parked := make(chan liberr.Error, 1)
			id := a.SendAsync(bytes.Repeat([]byte{2}, 100), true, func(err liberr.Error) { parked <- err })

			Expect(a.CancelSend(id)).To(Succeed())

			var err liberr.Error
			Eventually(parked, time.Second).Should(Receive(&err))
			Expect(err.IsCode(ErrorCanceled)).To(BeTrue())
		})

		It("should report an invalid id when cancelling a completed send", func() {
			a, b, _, _ := pair(defaultOpt)
			defer a.Close()
			defer b.Close()

			a.Start(nil, nil)
			b.Start(nil, nil)

			done := make(chan liberr.Error, 1)
			id := a.SendAsync([]byte("x"), true, func(err liberr.Error) { done <- err })
			Eventually(done, time.Second).Should(Receive(BeNil()))

			err := a.CancelSend(id)
			Expect(err).To(HaveOccurred())
			Expect(err.IsCode(ErrorInvalidOperationID)).To(BeTrue())
		})
	})

	Context("death", func() {
		It("should report the transport error once and fail parked sends", func() {
			opt := Options{TxQueueSize: 600, RxQueueSize: 4096, Timeout: time.Minute}

			a, _, ta, _ := pair(opt)

			dead := make(chan liberr.Error, 1)
			a.Start(nil, func(err liberr.Error) { dead <- err })

			// fill the queue, then park one send
			for {
				done := make(chan liberr.Error, 1)
				a.SendAsync(bytes.Repeat([]byte{1}, 100), false, func(err liberr.Error) { done <- err })

				var err liberr.Error
				Eventually(done, time.Second).Should(Receive(&err))
				if err != nil {
					break
				}
			}

			parked := make(chan liberr.Error, 1)
			a.SendAsync(bytes.Repeat([]byte{2}, 100), true, func(err liberr.Error) { parked <- err })

			_ = ta.Close()

			var derr liberr.Error
			Eventually(dead, time.Second).Should(Receive(&derr))
			Expect(derr).To(HaveOccurred())

			var perr liberr.Error
			Eventually(parked, time.Second).Should(Receive(&perr))
			Expect(perr).To(HaveOccurred())
		})
	})
})
