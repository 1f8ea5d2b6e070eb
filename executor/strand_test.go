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

// strand_test.go verifies the serialization guarantee of strands: tasks
// of one strand never overlap and run in posting order, even with many
// workers.
package executor_test

import (
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/yohummus/yogi-core-go/executor"
)

var _ = Describe("Strand", func() {
	var exe Executor

	BeforeEach(func() {
		exe = New()
		for i := 0; i < 4; i++ {
			exe.RunInBackground()
		}
		Expect(exe.WaitForRunning(time.Second)).To(BeTrue())
	})

	AfterEach(func() {
		exe.Close()
	})

	It("should preserve posting order", func() {
		str := exe.NewStrand()

		var mux sync.Mutex
		var got []int
		done := make(chan struct{})

		for i := 0; i < 100; i++ {
			idx := i
			str.Post(func() {
				mux.Lock()
				got = append(got, idx)
				mux.Unlock()

				if idx == 99 {
					close(done)
				}
			})
		}

		Eventually(done, 5*time.Second).Should(BeClosed())

		mux.Lock()
		defer mux.Unlock()

		for i, v := range got {
			Expect(v).To(Equal(i))
		}
	})

	It("should never run two tasks of one strand concurrently", func() {
		str := exe.NewStrand()

		var active, overlap, left atomic.Int32
		left.Store(200)
		done := make(chan struct{})

		for i := 0; i < 200; i++ {
			str.Post(func() {
				if active.Add(1) > 1 {
					overlap.Add(1)
				}

				time.Sleep(100 * time.Microsecond)
				active.Add(-1)

				if left.Add(-1) == 0 {
					close(done)
				}
			})
		}

		Eventually(done, 10*time.Second).Should(BeClosed())
		Expect(overlap.Load()).To(Equal(int32(0)))
	})

	It("should let independent strands progress in parallel", func() {
		a := exe.NewStrand()
		b := exe.NewStrand()

		done := make(chan string, 2)

		a.Post(func() { done <- "a" })
		b.Post(func() { done <- "b" })

		Eventually(done, time.Second).Should(HaveLen(2))
	})
})
