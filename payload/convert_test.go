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

// convert_test.go covers the JSON/MsgPack conversions: validation of
// user input, round-trip value equality and the documented truncation
// behavior when the receive buffer is too small.
package payload_test

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/yohummus/yogi-core-go/payload"
)

var _ = Describe("Payload conversion", func() {
	Context("JSON input", func() {
		It("should convert valid JSON to MsgPack", func() {
			raw, err := ToMsgPack([]byte(`{"k":42}`), EncodingJSON)
			Expect(err).ToNot(HaveOccurred())

			var v map[string]interface{}
			Expect(msgpack.Unmarshal(raw, &v)).To(Succeed())
			Expect(v).To(HaveKey("k"))
		})

		It("should accept a NUL terminated document", func() {
			_, err := ToMsgPack(append([]byte(`[1,2,3]`), 0), EncodingJSON)
			Expect(err).ToNot(HaveOccurred())
		})

		It("should reject malformed JSON", func() {
			_, err := ToMsgPack([]byte(`{"k":`), EncodingJSON)
			Expect(err).To(HaveOccurred())
			Expect(err.IsCode(ErrorParseJSON)).To(BeTrue())
		})
	})

	Context("MsgPack input", func() {
		It("should pass valid MsgPack through unchanged", func() {
			src, _ := msgpack.Marshal(map[string]int{"k": 42})

			raw, err := ToMsgPack(src, EncodingMsgPack)
			Expect(err).ToNot(HaveOccurred())
			Expect(raw).To(Equal(src))
		})

		It("should reject invalid MsgPack", func() {
			_, err := ToMsgPack([]byte{0xc1}, EncodingMsgPack)
			Expect(err).To(HaveOccurred())
			Expect(err.IsCode(ErrorInvalidMsgPack)).To(BeTrue())
		})
	})

	Context("round trips", func() {
		It("should preserve value equality through JSON, MsgPack and back", func() {
			docs := []string{
				`{"k":42}`,
				`{"nested":{"a":[1,2,3],"b":null}}`,
				`[true,false,null,0.5,"text"]`,
				`"just a string"`,
				`12345`,
			}

			for _, doc := range docs {
				raw, err := ToMsgPack([]byte(doc), EncodingJSON)
				Expect(err).ToNot(HaveOccurred())

				buf := make([]byte, 1024)
				n, err := FromMsgPack(raw, EncodingJSON, buf)
				Expect(err).ToNot(HaveOccurred())
				Expect(buf[n-1]).To(Equal(uint8(0)))

				var want, got interface{}
				Expect(json.Unmarshal([]byte(doc), &want)).To(Succeed())
				Expect(json.Unmarshal(buf[:n-1], &got)).To(Succeed())
				Expect(got).To(Equal(want))
			}
		})

		It("should hand MsgPack out byte-identical", func() {
			src, _ := msgpack.Marshal([]interface{}{"a", 1, true})

			buf := make([]byte, len(src))
			n, err := FromMsgPack(src, EncodingMsgPack, buf)

			Expect(err).ToNot(HaveOccurred())
			Expect(buf[:n]).To(Equal(src))
		})
	})

	Context("buffer too small", func() {
		It("should cut MsgPack output plainly", func() {
			src, _ := msgpack.Marshal("a longer string payload")

			buf := make([]byte, 4)
			n, err := FromMsgPack(src, EncodingMsgPack, buf)

			Expect(err).To(HaveOccurred())
			Expect(err.IsCode(ErrorBufferTooSmall)).To(BeTrue())
			Expect(n).To(Equal(4))
			Expect(buf).To(Equal(src[:4]))
		})

		It("should keep the NUL terminator on truncated JSON", func() {
			raw, _ := ToMsgPack([]byte(`{"key":"value that will not fit"}`), EncodingJSON)

			buf := make([]byte, 8)
			n, err := FromMsgPack(raw, EncodingJSON, buf)

			Expect(err).To(HaveOccurred())
			Expect(err.IsCode(ErrorBufferTooSmall)).To(BeTrue())
			Expect(n).To(Equal(8))
			Expect(buf[7]).To(Equal(uint8(0)))
		})
	})
})
