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

// file_test.go covers the viper-based file loader and the decode hooks
// translating duration and size notation.
package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/yohummus/yogi-core-go/config"
)

func writeTempConfig(name, content string) string {
	dir := GinkgoT().TempDir()
	path := filepath.Join(dir, name)

	Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
	return path
}

var _ = Describe("Configuration files", func() {
	It("should load a JSON file through the decode hooks", func() {
		path := writeTempConfig("branch.json", `{
			"name": "file-node",
			"path": "/file-node",
			"timeout": 2.5,
			"advertising_interval": -1,
			"tx_queue_size": "40KB",
			"rx_queue_size": 50000
		}`)

		cfg, err := FromFile(path)
		Expect(err).ToNot(HaveOccurred())

		Expect(cfg.Name).To(Equal("file-node"))
		Expect(cfg.Timeout.Time()).To(Equal(2500 * time.Millisecond))
		Expect(cfg.AdvertisingInterval.IsInfinite()).To(BeTrue())
		Expect(cfg.TxQueueSize.Int()).To(BeNumerically("~", 40000, 1000))
		Expect(cfg.RxQueueSize.Int()).To(Equal(50000))
	})

	It("should load a YAML file", func() {
		path := writeTempConfig("branch.yaml", "name: yaml-node\ntimeout: 1.5\nnetwork_name: lab\n")

		cfg, err := FromFile(path)
		Expect(err).ToNot(HaveOccurred())

		Expect(cfg.Name).To(Equal("yaml-node"))
		Expect(cfg.NetworkName).To(Equal("lab"))
		Expect(cfg.Timeout.Time()).To(Equal(1500 * time.Millisecond))
	})

	It("should reject an unreadable file", func() {
		_, err := FromFile(filepath.Join(GinkgoT().TempDir(), "missing.json"))
		Expect(err).To(HaveOccurred())
		Expect(err.IsCode(ErrorParseFile)).To(BeTrue())
	})

	It("should reject an empty path", func() {
		_, err := FromFile("")
		Expect(err).To(HaveOccurred())
		Expect(err.IsCode(ErrorParamEmpty)).To(BeTrue())
	})

	It("should still validate file-based values", func() {
		path := writeTempConfig("branch.json", `{"tx_queue_size": 1}`)

		_, err := FromFile(path)
		Expect(err).To(HaveOccurred())
		Expect(err.IsCode(ErrorValidate)).To(BeTrue())
	})

	Context("decode hook", func() {
		var hook func(reflect.Type, reflect.Type, interface{}) (interface{}, error)

		BeforeEach(func() {
			hook = ViperDecoderHook()
		})

		It("should decode float seconds", func() {
			r, err := hook(reflect.TypeOf(0.0), reflect.TypeOf(Seconds(0)), 0.25)
			Expect(err).ToNot(HaveOccurred())
			Expect(r.(Seconds).Time()).To(Equal(250 * time.Millisecond))
		})

		It("should decode negative numbers as infinite", func() {
			r, err := hook(reflect.TypeOf(0), reflect.TypeOf(Seconds(0)), -1)
			Expect(err).ToNot(HaveOccurred())
			Expect(r.(Seconds).IsInfinite()).To(BeTrue())
		})

		It("should decode duration strings", func() {
			r, err := hook(reflect.TypeOf(""), reflect.TypeOf(Seconds(0)), "3s")
			Expect(err).ToNot(HaveOccurred())
			Expect(r.(Seconds).Time()).To(Equal(3 * time.Second))
		})

		It("should decode size strings", func() {
			r, err := hook(reflect.TypeOf(""), reflect.TypeOf(Bytes(0)), "1K")
			Expect(err).ToNot(HaveOccurred())
			Expect(r.(Bytes).Int()).To(BeNumerically(">", 0))
		})

		It("should pass unrelated types through", func() {
			r, err := hook(reflect.TypeOf(""), reflect.TypeOf(""), "plain")
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal("plain"))
		})
	})
})
