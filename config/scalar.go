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

package config

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	libdur "github.com/nabbar/golib/duration"
	libsiz "github.com/nabbar/golib/size"
)

// Infinite is the sentinel duration disabling a watchdog.
const Infinite = libdur.Duration(math.MaxInt64)

// Seconds is a duration configured as floating point seconds. A negative
// value means infinite. String values are parsed with the duration
// package ("3s", "1d12h").
type Seconds libdur.Duration

func (s Seconds) Duration() libdur.Duration {
	return libdur.Duration(s)
}

func (s Seconds) Time() time.Duration {
	return libdur.Duration(s).Time()
}

func (s Seconds) IsInfinite() bool {
	return libdur.Duration(s) == Infinite
}

// Float64 returns the duration as seconds, -1 for infinite. This is the
// representation used in info snapshots.
func (s Seconds) Float64() float64 {
	if s.IsInfinite() {
		return -1
	}

	return s.Time().Seconds()
}

func (s Seconds) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Float64())
}

func (s *Seconds) UnmarshalJSON(p []byte) error {
	if len(p) > 0 && p[0] == '"' {
		var str string
		if err := json.Unmarshal(p, &str); err != nil {
			return err
		}

		d, err := libdur.Parse(str)
		if err != nil {
			return err
		}

		*s = Seconds(d)
		return nil
	}

	f, err := strconv.ParseFloat(string(p), 64)
	if err != nil {
		return err
	}

	if f < 0 {
		*s = Seconds(Infinite)
		return nil
	}

	*s = Seconds(libdur.Duration(time.Duration(f * float64(time.Second))))
	return nil
}

// ViperDecoderHook returns a mapstructure decode hook translating the
// configuration notation into Seconds and Bytes values: numbers are
// float seconds respectively byte counts, strings go through the
// duration and size parsers. It composes the hooks of both scalar
// packages so that file-based configuration decodes exactly like JSON.
func ViperDecoderHook() func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	var (
		dur = libdur.ViperDecoderHook()
		siz = libsiz.ViperDecoderHook()

		secondsType = reflect.TypeOf(Seconds(0))
		bytesType   = reflect.TypeOf(Bytes(0))
	)

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		switch to {
		case secondsType:
			return decodeSeconds(from, data, dur)
		case bytesType:
			return decodeBytes(from, data, siz)
		}

		return data, nil
	}
}

type decodeHook func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error)

func decodeSeconds(from reflect.Type, data interface{}, dur decodeHook) (interface{}, error) {
	secondsOf := func(f float64) Seconds {
		if f < 0 {
			return Seconds(Infinite)
		}

		return Seconds(libdur.Duration(time.Duration(f * float64(time.Second))))
	}

	switch v := data.(type) {
	case float64:
		return secondsOf(v), nil
	case float32:
		return secondsOf(float64(v)), nil
	case int:
		return secondsOf(float64(v)), nil
	case int64:
		return secondsOf(float64(v)), nil
	case string:
		r, err := dur(from, reflect.TypeOf(libdur.Duration(0)), v)
		if err != nil {
			return nil, err
		}

		if d, ok := r.(libdur.Duration); ok {
			return Seconds(d), nil
		}
	}

	//nolint #goerr113
	return nil, fmt.Errorf("cannot decode %T into a duration", data)
}

func decodeBytes(from reflect.Type, data interface{}, siz decodeHook) (interface{}, error) {
	bytesOf := func(i int64) Bytes {
		if i < 0 {
			return 0
		}

		return Bytes(i)
	}

	switch v := data.(type) {
	case float64:
		return bytesOf(int64(v)), nil
	case int:
		return bytesOf(int64(v)), nil
	case int64:
		return bytesOf(v), nil
	case string:
		r, err := siz(from, reflect.TypeOf(libsiz.Size(0)), v)
		if err != nil {
			return nil, err
		}

		if s, ok := r.(libsiz.Size); ok {
			return Bytes(s), nil
		}
	}

	//nolint #goerr113
	return nil, fmt.Errorf("cannot decode %T into a byte count", data)
}

// Bytes is a byte count configured as a JSON number or as a human
// readable size string ("35k", "10MB"). A negative number means
// unlimited and decodes to zero.
type Bytes libsiz.Size

func (b Bytes) Size() libsiz.Size {
	return libsiz.Size(b)
}

func (b Bytes) Int() int {
	return int(b)
}

func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(b))
}

func (b *Bytes) UnmarshalJSON(p []byte) error {
	if len(p) > 0 && p[0] == '"' {
		var str string
		if err := json.Unmarshal(p, &str); err != nil {
			return err
		}

		s, err := libsiz.Parse(str)
		if err != nil {
			return err
		}

		*b = Bytes(s)
		return nil
	}

	i, err := strconv.ParseInt(string(p), 10, 64)
	if err != nil {
		return err
	}

	if i < 0 {
		*b = 0
		return nil
	}

	*b = Bytes(i)
	return nil
}
