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

package message

// frameQueue is a FIFO of whole frames bounded by their total byte size.
// It is not safe for concurrent use; callers hold their own lock.
type frameQueue struct {
	cap    int
	used   int
	frames [][]byte
}

func newFrameQueue(capacity int) *frameQueue {
	return &frameQueue{cap: capacity}
}

func (q *frameQueue) Free() int {
	return q.cap - q.used
}

func (q *frameQueue) Used() int {
	return q.used
}

func (q *frameQueue) Empty() bool {
	return len(q.frames) == 0
}

// Push appends a frame. The caller must have checked Free beforehand.
func (q *frameQueue) Push(frame []byte) {
	q.frames = append(q.frames, frame)
	q.used += len(frame)
}

// Pop removes and returns the oldest frame.
func (q *frameQueue) Pop() ([]byte, bool) {
	if len(q.frames) == 0 {
		return nil, false
	}

	f := q.frames[0]
	q.frames[0] = nil
	q.frames = q.frames[1:]
	q.used -= len(f)

	return f, true
}

func (q *frameQueue) Clear() {
	q.frames = nil
	q.used = 0
}
