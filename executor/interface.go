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

// Task is a completion handler. Tasks run to completion and must never
// block on the executor that runs them.
type Task func()

// Executor runs posted tasks on worker goroutines.
type Executor interface {
	// Post enqueues a task. Posting to a closed executor drops the task.
	Post(t Task)

	// Run executes ready tasks until Stop or Close is called and returns
	// the number of tasks executed.
	Run() int

	// RunFor behaves like Run but returns once d has elapsed.
	RunFor(d time.Duration) int

	// RunOne executes at most one task, waiting up to d for one to become
	// ready. It reports whether a task ran.
	RunOne(d time.Duration) bool

	// Poll executes every ready task without waiting and returns the
	// number of tasks executed.
	Poll() int

	// PollOne executes at most one ready task without waiting.
	PollOne() bool

	// Stop interrupts every active Run* call. A later Run call resumes
	// normal operation; until then RunOne and RunFor return as soon as
	// no task is ready.
	Stop()

	// RunInBackground starts an owned worker goroutine executing Run.
	RunInBackground()

	// WaitForRunning blocks until a runner is active or d elapsed.
	WaitForRunning(d time.Duration) bool

	// WaitForStopped blocks until no runner is active or d elapsed.
	WaitForStopped(d time.Duration) bool

	// NewStrand returns a serializing wrapper around this executor.
	NewStrand() Strand

	// Close stops the executor for good and discards pending tasks.
	// Components owning pending operations are responsible for completing
	// their callbacks with a canceled error before releasing them.
	Close()
}

// Strand serializes posted tasks: two tasks posted to the same strand
// never run concurrently and run in posting order.
type Strand interface {
	Post(t Task)
}

// New returns an idle executor. Workers are only created by Run* calls or
// RunInBackground.
func New() Executor {
	e := &exc{
		mux: sync.Mutex{},
	}

	e.cnd = sync.NewCond(&e.mux)
	return e
}
