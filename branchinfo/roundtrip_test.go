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

// roundtrip_test.go serializes a local record and parses it back as a
// remote one, covering every field, the embedded advertisement header
// and the infinite duration sentinel.
package branchinfo_test

import (
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/yohummus/yogi-core-go/branchinfo"
	"github.com/yohummus/yogi-core-go/config"
	"github.com/yohummus/yogi-core-go/protocol"
)

func makeConfig(raw string) *config.Branch {
	cfg, err := config.Parse([]byte(raw))
	Expect(err).ToNot(HaveOccurred())
	return cfg
}

var _ = Describe("Branch info records", func() {
	var local *Local

	BeforeEach(func() {
		cfg := makeConfig(`{
			"name": "node-a",
			"description": "test node",
			"path": "/lab/node-a",
			"network_name": "lab",
			"timeout": 2.5,
			"advertising_interval": 0.5
		}`)

		var err error
		local, err = NewLocal(cfg, 19000)
		Expect(err).ToNot(HaveOccurred())
	})

	Context("local record", func() {
		It("should embed the advertisement as info message prefix", func() {
			adv := local.AdvertisingMessage()
			inf := local.InfoMessage()

			Expect(adv).To(HaveLen(protocol.AdvertisingMessageSize))
			Expect(inf[:len(adv)]).To(Equal(adv))
		})

		It("should render the documented snapshot fields", func() {
			js := local.ToJSON()

			Expect(js).To(HaveKeyWithValue("name", "node-a"))
			Expect(js).To(HaveKeyWithValue("network_name", "lab"))
			Expect(js).To(HaveKeyWithValue("path", "/lab/node-a"))
			Expect(js).To(HaveKey("uuid"))
			Expect(js).To(HaveKey("start_time"))
			Expect(js).To(HaveKeyWithValue("timeout", 2.5))
			Expect(js).To(HaveKey("advertising_interfaces"))
			Expect(js).To(HaveKey("tx_queue_size"))
		})

		It("should reject a missing port", func() {
			_, err := NewLocal(makeConfig(`{}`), 0)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("round trip", func() {
		It("should parse back every field", func() {
			inf := local.InfoMessage()

			hdr := inf[:protocol.AdvertisingMessageSize]
			length, n, err := protocol.Varint(inf[protocol.AdvertisingMessageSize:])
			Expect(err).ToNot(HaveOccurred())

			body := inf[protocol.AdvertisingMessageSize+n:]
			Expect(body).To(HaveLen(int(length)))

			peer := &net.TCPAddr{IP: net.ParseIP("192.168.1.7"), Port: 40000}

			rmt, err := ParseRemote(hdr, body, peer)
			Expect(err).ToNot(HaveOccurred())

			Expect(rmt.UUID).To(Equal(local.UUID))
			Expect(rmt.Name).To(Equal("node-a"))
			Expect(rmt.Description).To(Equal("test node"))
			Expect(rmt.NetworkName).To(Equal("lab"))
			Expect(rmt.Path).To(Equal("/lab/node-a"))
			Expect(rmt.Hostname).To(Equal(local.Hostname))
			Expect(rmt.Pid).To(Equal(local.Pid))
			Expect(rmt.StartTime.UnixNano()).To(Equal(local.StartTime.UnixNano()))
			Expect(rmt.Timeout).To(Equal(local.Timeout))
			Expect(rmt.AdvInterval).To(Equal(local.AdvInterval))
			Expect(rmt.GhostMode).To(BeFalse())
			Expect(rmt.TCPServerPort).To(Equal(uint16(19000)))
			Expect(rmt.TCPServerAddr).To(Equal("192.168.1.7"))
		})

		It("should carry the infinite timeout sentinel", func() {
			cfg := makeConfig(`{"name": "inf-node", "timeout": -1}`)

			l, err := NewLocal(cfg, 19001)
			Expect(err).ToNot(HaveOccurred())

			inf := l.InfoMessage()
			hdr := inf[:protocol.AdvertisingMessageSize]
			_, n, _ := protocol.Varint(inf[protocol.AdvertisingMessageSize:])
			body := inf[protocol.AdvertisingMessageSize+n:]

			rmt, err := ParseRemote(hdr, body, &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
			Expect(err).ToNot(HaveOccurred())
			Expect(rmt.Timeout.IsInfinite()).To(BeTrue())
			Expect(rmt.ToJSON()).To(HaveKeyWithValue("timeout", -1.0))
		})

		It("should reject a corrupted body", func() {
			inf := local.InfoMessage()
			hdr := inf[:protocol.AdvertisingMessageSize]

			_, err := ParseRemote(hdr, []byte{0xff, 0xff}, &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
			Expect(err).To(HaveOccurred())
		})
	})
})
