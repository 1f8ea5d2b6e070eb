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

package protocol

import (
	"crypto/rand"
	"crypto/sha256"

	liberr "github.com/nabbar/golib/errors"
)

// HashPassword derives the shared secret exchanged material from the
// network password. Only this hash, never the password itself, enters any
// solution computation.
func HashPassword(password string) []byte {
	h := sha256.Sum256([]byte(password))
	return h[:]
}

// MakeChallenge produces the random bytes sent to the peer during
// authentication.
func MakeChallenge() ([]byte, liberr.Error) {
	buf := make([]byte, ChallengeSize)
	if _, err := rand.Read(buf); err != nil {
		return nil, ErrorParamEmpty.Error(err)
	}

	return buf, nil
}

// SolveChallenge computes SHA-256(passwordHash ‖ challenge): the value a
// peer must return to prove knowledge of the network password.
func SolveChallenge(passwordHash, challenge []byte) []byte {
	h := sha256.New()
	h.Write(passwordHash)
	h.Write(challenge)

	return h.Sum(nil)
}
