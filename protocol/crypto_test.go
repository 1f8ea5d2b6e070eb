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

// crypto_test.go verifies the challenge/response material: sizes,
// determinism of solutions and sensitivity to password and challenge.
package protocol_test

import (
	"crypto/sha256"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/yohummus/yogi-core-go/protocol"
)

var _ = Describe("Authentication material", func() {
	It("should hash the password to a fixed size secret", func() {
		h := HashPassword("secret")

		Expect(h).To(HaveLen(sha256.Size))
		Expect(HashPassword("secret")).To(Equal(h))
		Expect(HashPassword("other")).ToNot(Equal(h))
	})

	It("should hash the empty password deterministically", func() {
		Expect(HashPassword("")).To(Equal(HashPassword("")))
	})

	It("should produce challenges of the documented size", func() {
		c, err := MakeChallenge()

		Expect(err).ToNot(HaveOccurred())
		Expect(c).To(HaveLen(ChallengeSize))
	})

	It("should produce distinct challenges", func() {
		a, _ := MakeChallenge()
		b, _ := MakeChallenge()

		Expect(a).ToNot(Equal(b))
	})

	It("should solve a challenge identically on both sides", func() {
		hash := HashPassword("hunter2")
		challenge, _ := MakeChallenge()

		Expect(SolveChallenge(hash, challenge)).To(HaveLen(SolutionSize))
		Expect(SolveChallenge(hash, challenge)).To(Equal(SolveChallenge(hash, challenge)))
	})

	It("should yield different solutions for different passwords", func() {
		challenge, _ := MakeChallenge()

		a := SolveChallenge(HashPassword("a"), challenge)
		b := SolveChallenge(HashPassword("b"), challenge)

		Expect(a).ToNot(Equal(b))
	})
})
