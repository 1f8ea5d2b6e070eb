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

// Package message adds whole-message semantics on top of a framed
// transport: every message travels as a varint length prefix followed by
// the body, an empty frame is a heartbeat.
//
// Outgoing messages enter a bounded send queue atomically. When the
// queue lacks room a send either parks until space frees up (retry) or
// completes immediately with a queue-full error (no retry). Parked sends
// keep their posting order and can be canceled through the operation id
// returned by SendAsync. Incoming messages pass through a bounded
// receive queue that decouples socket reads from consumer delivery.
//
// Heartbeats are emitted whenever the write path has been idle for half
// the connection timeout, so a healthy but silent session never trips
// the peer's inactivity watchdog.
package message
