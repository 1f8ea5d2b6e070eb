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

import "sync"

type strand struct {
	exc *exc

	mux    sync.Mutex
	queue  []Task
	active bool
}

func (s *strand) Post(t Task) {
	if t == nil {
		return
	}

	s.mux.Lock()
	s.queue = append(s.queue, t)

	if s.active {
		s.mux.Unlock()
		return
	}

	s.active = true
	s.mux.Unlock()

	s.exc.Post(s.drainOne)
}

// drainOne runs exactly one queued task and re-posts itself while work
// remains, so one strand never occupies more than one worker.
func (s *strand) drainOne() {
	s.mux.Lock()

	if len(s.queue) == 0 {
		s.active = false
		s.mux.Unlock()
		return
	}

	t := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	s.mux.Unlock()

	t()

	s.mux.Lock()
	if len(s.queue) == 0 {
		s.active = false
		s.mux.Unlock()
		return
	}
	s.mux.Unlock()

	s.exc.Post(s.drainOne)
}
