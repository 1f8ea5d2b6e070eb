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

// integration_test.go pairs two in-process branches and walks through
// the documented end-to-end scenarios: discovery into a session,
// password mismatch, broadcast round trips, duplicate identity, ghost
// mode and session loss.
package branch_test

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	liberr "github.com/nabbar/golib/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/yohummus/yogi-core-go/branch"
	"github.com/yohummus/yogi-core-go/manager"
	"github.com/yohummus/yogi-core-go/payload"
	"github.com/yohummus/yogi-core-go/protocol"
)

var _ = Describe("Branch integration", Serial, func() {
	var (
		port uint16
		net1 string
		a, b Branch
		tapA *eventTap
	)

	BeforeEach(func() {
		port = freeUDPPort()
		net1 = uuid.NewString()[:8]
		a, b = nil, nil
		tapA = nil
	})

	AfterEach(func() {
		if tapA != nil {
			tapA.stop()
		}
		if a != nil {
			a.Close()
		}
		if b != nil {
			b.Close()
		}
	})

	startPair := func(passwordA, passwordB string) {
		var err liberr.Error

		a, err = Create(cfgJSON("node-a", net1, passwordA, port), nil)
		Expect(err).ToNot(HaveOccurred())

		tapA = tapEvents(a)

		b, err = Create(cfgJSON("node-b", net1, passwordB, port), nil)
		Expect(err).ToNot(HaveOccurred())
	}

	Context("discovery and session", func() {
		It("should discover, query and connect to a new peer", func() {
			startPair("", "")

			ev := tapA.await(manager.EventBranchDiscovered, b.UUID(), 5*time.Second)
			Expect(ev.Result.IsSuccess()).To(BeTrue())

			var discovered map[string]interface{}
			Expect(json.Unmarshal(ev.JSON, &discovered)).To(Succeed())
			Expect(discovered).To(HaveKey("tcp_server_address"))
			Expect(discovered).To(HaveKey("tcp_server_port"))

			ev = tapA.await(manager.EventBranchQueried, b.UUID(), 5*time.Second)

			var queried map[string]interface{}
			Expect(json.Unmarshal(ev.JSON, &queried)).To(Succeed())
			Expect(queried).To(HaveKeyWithValue("name", "node-b"))
			Expect(queried).To(HaveKeyWithValue("network_name", net1))

			ev = tapA.await(manager.EventConnectFinished, b.UUID(), 5*time.Second)
			Expect(ev.Result).To(Equal(protocol.OK))

			Eventually(func() int { return len(a.ConnectedBranches()) }, 5*time.Second).Should(Equal(1))
			Eventually(func() int { return len(b.ConnectedBranches()) }, 5*time.Second).Should(Equal(1))
		})

		It("should keep exactly one connection per peer pair", func() {
			startPair("", "")

			tapA.await(manager.EventConnectFinished, b.UUID(), 5*time.Second)

			// both sides dial each other; after the race settles each
			// side must hold exactly one session and stay stable
			Eventually(func() int { return len(a.ConnectedBranches()) }, 5*time.Second).Should(Equal(1))
			Consistently(func() int { return len(a.ConnectedBranches()) }, time.Second).Should(Equal(1))
			Consistently(func() int { return len(b.ConnectedBranches()) }, time.Second).Should(Equal(1))
		})
	})

	Context("password mismatch", func() {
		It("should fail the handshake and never report a lost connection", func() {
			startPair("password-a", "password-b")

			ev := tapA.await(manager.EventConnectFinished, uuid.Nil, 10*time.Second)
			Expect(ev.Result).To(Equal(protocol.ErrPasswordMismatch))

			Consistently(func() int { return len(a.ConnectedBranches()) }, time.Second).Should(Equal(0))

			select {
			case ev := <-tapA.evs:
				Expect(ev.Kind).ToNot(Equal(manager.EventConnectionLost))
			default:
			}
		})
	})

	Context("broadcasts", func() {
		It("should round trip a JSON payload to MsgPack and back", func() {
			startPair("", "")
			tapA.await(manager.EventConnectFinished, b.UUID(), 5*time.Second)

			type rx struct {
				err liberr.Error
				src uuid.UUID
				n   int
			}

			got := make(chan rx, 1)
			buf := make([]byte, 1024)

			b.ReceiveBroadcastAsync(payload.EncodingJSON, buf, func(err liberr.Error, src uuid.UUID, n int) {
				got <- rx{err: err, src: src, n: n}
			})

			Expect(a.SendBroadcast([]byte(`{"k":42}`), payload.EncodingJSON, true)).To(Succeed())

			var r rx
			Eventually(got, 5*time.Second).Should(Receive(&r))

			Expect(r.err).ToNot(HaveOccurred())
			Expect(r.src).To(Equal(a.UUID()))
			Expect(buf[r.n-1]).To(Equal(uint8(0)))

			var v map[string]interface{}
			Expect(json.Unmarshal(buf[:r.n-1], &v)).To(Succeed())
			Expect(v).To(HaveKeyWithValue("k", 42.0))
		})

		It("should succeed immediately without connected peers", func() {
			var err liberr.Error

			a, err = Create(cfgJSON("node-solo", net1, "", port), nil)
			Expect(err).ToNot(HaveOccurred())

			Expect(a.SendBroadcast([]byte(`{"x":1}`), payload.EncodingJSON, false)).To(Succeed())
		})

		It("should reject invalid user payloads", func() {
			var err liberr.Error

			a, err = Create(cfgJSON("node-solo", net1, "", port), nil)
			Expect(err).ToNot(HaveOccurred())

			_, serr := a.SendBroadcastAsync([]byte(`{"broken"`), payload.EncodingJSON, false, nil)
			Expect(serr).To(HaveOccurred())
		})

		It("should cancel an armed receive with a canceled error", func() {
			var err liberr.Error

			a, err = Create(cfgJSON("node-solo", net1, "", port), nil)
			Expect(err).ToNot(HaveOccurred())

			got := make(chan liberr.Error, 1)
			a.ReceiveBroadcastAsync(payload.EncodingJSON, make([]byte, 16), func(e liberr.Error, _ uuid.UUID, _ int) {
				got <- e
			})

			Expect(a.CancelReceiveBroadcast()).To(BeTrue())

			var e liberr.Error
			Eventually(got, 2*time.Second).Should(Receive(&e))
			Expect(e).To(HaveOccurred())
			Expect(protocol.ResultFromError(e)).To(Equal(protocol.ErrCanceled))
		})
	})

	Context("duplicate identity", func() {
		It("should report a duplicate branch name and no lost connection", func() {
			var err liberr.Error

			a, err = Create(cfgJSON("same-name", net1, "", port), nil)
			Expect(err).ToNot(HaveOccurred())

			tapA = tapEvents(a)

			b, err = Create(cfgJSON("same-name", net1, "", port), nil)
			Expect(err).ToNot(HaveOccurred())

			ev := tapA.await(manager.EventConnectFinished, uuid.Nil, 10*time.Second)
			Expect(ev.Result).To(Equal(protocol.ErrDuplicateBranchName))

			Consistently(func() int { return len(a.ConnectedBranches()) }, time.Second).Should(Equal(0))
		})
	})

	Context("ghost mode", func() {
		It("should query peers but never join a session", func() {
			var err liberr.Error

			raw := []byte(`{
				"name": "ghost",
				"network_name": "` + net1 + `",
				"advertising_address": "` + testGroup + `",
				"advertising_port": ` + itoa(port) + `,
				"advertising_interval": 0.1,
				"ghost_mode": true
			}`)

			a, err = Create(raw, nil)
			Expect(err).ToNot(HaveOccurred())

			tapA = tapEvents(a)

			b, err = Create(cfgJSON("normal", net1, "", port), nil)
			Expect(err).ToNot(HaveOccurred())

			ev := tapA.await(manager.EventBranchQueried, b.UUID(), 10*time.Second)

			var queried map[string]interface{}
			Expect(json.Unmarshal(ev.JSON, &queried)).To(Succeed())
			Expect(queried).To(HaveKeyWithValue("name", "normal"))

			Consistently(func() int { return len(a.ConnectedBranches()) }, 2*time.Second).Should(Equal(0))
		})
	})

	Context("session loss", func() {
		It("should report a lost connection when the peer goes away", func() {
			startPair("", "")

			tapA.await(manager.EventConnectFinished, b.UUID(), 5*time.Second)

			peer := b.UUID()
			b.Close()
			b = nil

			ev := tapA.await(manager.EventConnectionLost, peer, 10*time.Second)
			Expect(ev.Result.IsError()).To(BeTrue())

			Eventually(func() int { return len(a.ConnectedBranches()) }, 5*time.Second).Should(Equal(0))
		})
	})

	Context("snapshots", func() {
		It("should render the local info snapshot", func() {
			var err liberr.Error

			a, err = Create(cfgJSON("snap", net1, "", port), nil)
			Expect(err).ToNot(HaveOccurred())

			raw, err := a.Info()
			Expect(err).ToNot(HaveOccurred())

			var v map[string]interface{}
			Expect(json.Unmarshal(raw, &v)).To(Succeed())
			Expect(v).To(HaveKeyWithValue("name", "snap"))
			Expect(v).To(HaveKeyWithValue("uuid", a.UUID().String()))
			Expect(v).To(HaveKeyWithValue("tcp_server_port", float64(a.Port())))
		})
	})
})
