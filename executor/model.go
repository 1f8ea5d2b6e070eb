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
	"sync"
	"time"
)

type exc struct {
	mux sync.Mutex
	cnd *sync.Cond

	queue   []Task
	runners int
	stopped bool
	closed  bool
}

func (e *exc) Post(t Task) {
	if t == nil {
		return
	}

	e.mux.Lock()
	defer e.mux.Unlock()

	if e.closed {
		return
	}

	e.queue = append(e.queue, t)
	e.cnd.Signal()
}

func (e *exc) pop() (Task, bool) {
	if len(e.queue) == 0 {
		return nil, false
	}

	t := e.queue[0]
	e.queue[0] = nil
	e.queue = e.queue[1:]

	return t, true
}

func (e *exc) Run() int {
	var n int

	e.mux.Lock()
	e.stopped = false
	e.runners++
	e.cnd.Broadcast()

	for {
		if e.stopped || e.closed {
			break
		}

		if t, ok := e.pop(); ok {
			e.mux.Unlock()
			t()
			n++
			e.mux.Lock()
			continue
		}

		e.cnd.Wait()
	}

	e.runners--
	e.cnd.Broadcast()
	e.mux.Unlock()

	return n
}

func (e *exc) RunFor(d time.Duration) int {
	var n int

	dl := time.Now().Add(d)
	for {
		left := time.Until(dl)
		if left <= 0 {
			return n
		}

		if !e.RunOne(left) {
			return n
		}

		n++
	}
}

func (e *exc) RunOne(d time.Duration) bool {
	dl := time.Now().Add(d)

	for {
		if e.PollOne() {
			return true
		}

		e.mux.Lock()
		if e.stopped || e.closed {
			e.mux.Unlock()
			return false
		}
		e.mux.Unlock()

		if time.Now().After(dl) {
			return false
		}

		time.Sleep(time.Millisecond)
	}
}

func (e *exc) Poll() int {
	var n int
	for e.PollOne() {
		n++
	}

	return n
}

func (e *exc) PollOne() bool {
	e.mux.Lock()

	if e.closed {
		e.mux.Unlock()
		return false
	}

	t, ok := e.pop()
	e.mux.Unlock()

	if !ok {
		return false
	}

	t()
	return true
}

func (e *exc) Stop() {
	e.mux.Lock()
	defer e.mux.Unlock()

	e.stopped = true
	e.cnd.Broadcast()
}

func (e *exc) RunInBackground() {
	go e.Run()
}

func (e *exc) WaitForRunning(d time.Duration) bool {
	return e.waitFor(d, func() bool { return e.runners > 0 })
}

func (e *exc) WaitForStopped(d time.Duration) bool {
	return e.waitFor(d, func() bool { return e.runners == 0 })
}

// waitFor polls the condition under the lock. The condition variable has
// no timed wait, so a millisecond poll keeps the implementation simple
// without measurable cost on the lifecycle paths that use it.
func (e *exc) waitFor(d time.Duration, fn func() bool) bool {
	dl := time.Now().Add(d)

	for {
		e.mux.Lock()
		ok := fn()
		e.mux.Unlock()

		if ok {
			return true
		}

		if time.Now().After(dl) {
			return false
		}

		time.Sleep(time.Millisecond)
	}
}

func (e *exc) NewStrand() Strand {
	return &strand{exc: e}
}

func (e *exc) Close() {
	e.mux.Lock()
	defer e.mux.Unlock()

	e.closed = true
	e.queue = nil
	e.cnd.Broadcast()
}
