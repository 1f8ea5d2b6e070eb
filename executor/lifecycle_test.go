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

// lifecycle_test.go validates the executor contract: posting, polling,
// bounded runs, stop/restart and background workers.
package executor_test

import (
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/yohummus/yogi-core-go/executor"
)

var _ = Describe("Executor lifecycle", func() {
	var exe Executor

	BeforeEach(func() {
		exe = New()
	})

	AfterEach(func() {
		exe.Close()
	})

	Context("polling", func() {
		It("should run every ready task", func() {
			var n atomic.Int32

			for i := 0; i < 5; i++ {
				exe.Post(func() { n.Add(1) })
			}

			Expect(exe.Poll()).To(Equal(5))
			Expect(n.Load()).To(Equal(int32(5)))
		})

		It("should run at most one ready task", func() {
			var n atomic.Int32

			exe.Post(func() { n.Add(1) })
			exe.Post(func() { n.Add(1) })

			Expect(exe.PollOne()).To(BeTrue())
			Expect(n.Load()).To(Equal(int32(1)))
		})

		It("should report no work without tasks", func() {
			Expect(exe.Poll()).To(Equal(0))
			Expect(exe.PollOne()).To(BeFalse())
		})
	})

	Context("bounded runs", func() {
		It("should wait for a late task", func() {
			var n atomic.Int32

			go func() {
				time.Sleep(20 * time.Millisecond)
				exe.Post(func() { n.Add(1) })
			}()

			Expect(exe.RunOne(time.Second)).To(BeTrue())
			Expect(n.Load()).To(Equal(int32(1)))
		})

		It("should give up after the duration", func() {
			start := time.Now()
			Expect(exe.RunOne(50 * time.Millisecond)).To(BeFalse())
			Expect(time.Since(start)).To(BeNumerically(">=", 50*time.Millisecond))
		})
	})

	Context("background workers", func() {
		It("should report running workers and execute posted tasks", func() {
			exe.RunInBackground()
			Expect(exe.WaitForRunning(time.Second)).To(BeTrue())

			done := make(chan struct{})
			exe.Post(func() { close(done) })

			Eventually(done, time.Second).Should(BeClosed())
		})

		It("should stop workers on Stop", func() {
			exe.RunInBackground()
			Expect(exe.WaitForRunning(time.Second)).To(BeTrue())

			exe.Stop()
			Expect(exe.WaitForStopped(time.Second)).To(BeTrue())
		})
	})

	Context("close", func() {
		It("should drop tasks posted after Close", func() {
			exe.Close()

			var n atomic.Int32
			exe.Post(func() { n.Add(1) })

			Expect(exe.Poll()).To(Equal(0))
			Expect(n.Load()).To(Equal(int32(0)))
		})
	})
})
