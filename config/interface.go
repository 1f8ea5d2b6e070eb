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
	"os"

	libval "github.com/go-playground/validator/v10"

	liberr "github.com/nabbar/golib/errors"

	"github.com/yohummus/yogi-core-go/protocol"
)

// Branch holds every recognized branch option. Zero values are replaced
// with defaults by Complete.
type Branch struct {
	// Name of the branch, unique within a network.
	Name string `json:"name" mapstructure:"name" validate:"required"`

	// Description is free form text carried in info snapshots.
	Description string `json:"description" mapstructure:"description"`

	// Path of the branch in the virtual tree, unique within a network.
	// Must start with a slash.
	Path string `json:"path" mapstructure:"path" validate:"required,startswith=/"`

	// NetworkName identifies the network this branch joins.
	NetworkName string `json:"network_name" mapstructure:"network_name"`

	// NetworkPassword protects the network. Only its hash is ever used.
	NetworkPassword string `json:"network_password" mapstructure:"network_password"`

	// AdvertisingInterfaces lists adapter names, MAC addresses or the
	// tokens "localhost" and "all".
	AdvertisingInterfaces []string `json:"advertising_interfaces" mapstructure:"advertising_interfaces"`

	// AdvertisingAddress is the multicast group to announce on. A
	// non-multicast address degrades to plain UDP, which is useful for
	// loopback test setups.
	AdvertisingAddress string `json:"advertising_address" mapstructure:"advertising_address"`

	// AdvertisingPort is the UDP port of the advertising group.
	AdvertisingPort uint16 `json:"advertising_port" mapstructure:"advertising_port"`

	// AdvertisingInterval is the beacon period. Negative means infinite
	// (a single beacon on start).
	AdvertisingInterval Seconds `json:"advertising_interval" mapstructure:"advertising_interval"`

	// Timeout is the connection inactivity limit. Negative disables the
	// watchdog but not heartbeating.
	Timeout Seconds `json:"timeout" mapstructure:"timeout"`

	// GhostMode lets the branch observe the network without joining it.
	GhostMode bool `json:"ghost_mode" mapstructure:"ghost_mode"`

	// TxQueueSize bounds the per-connection send queue in bytes.
	TxQueueSize Bytes `json:"tx_queue_size" mapstructure:"tx_queue_size"`

	// RxQueueSize bounds the per-connection receive queue in bytes.
	RxQueueSize Bytes `json:"rx_queue_size" mapstructure:"rx_queue_size"`

	// TransceiveByteLimit caps a single socket transfer. Test knob, not
	// part of the public schema.
	TransceiveByteLimit Bytes `json:"_transceive_byte_limit" mapstructure:"_transceive_byte_limit"`

	hostname string
	pid      int
}

func newWithDefaults() *Branch {
	return &Branch{
		AdvertisingInterval: Seconds(protocol.DefaultAdvInterval),
		Timeout:             Seconds(protocol.DefaultConnectionTimeout),
		TxQueueSize:         Bytes(protocol.DefaultTxQueueSize),
		RxQueueSize:         Bytes(protocol.DefaultRxQueueSize),
	}
}

// Parse decodes a JSON document into a Branch, applies defaults and
// validates the result.
func Parse(raw []byte) (*Branch, liberr.Error) {
	cfg := newWithDefaults()

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, ErrorParseJSON.Error(err)
		}
	}

	if err := cfg.Complete(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Complete fills every unset option with its default.
func (c *Branch) Complete() liberr.Error {
	var err error

	if c.hostname == "" {
		if c.hostname, err = os.Hostname(); err != nil {
			c.hostname = "localhost"
		}
	}

	if c.pid == 0 {
		c.pid = os.Getpid()
	}

	if c.Name == "" {
		c.Name = fmt.Sprintf("%s:%d", c.hostname, c.pid)
	}

	if c.Path == "" {
		c.Path = "/" + c.Name
	}

	if c.NetworkName == "" {
		c.NetworkName = c.hostname
	}

	if len(c.AdvertisingInterfaces) == 0 {
		c.AdvertisingInterfaces = []string{"localhost"}
	}

	if c.AdvertisingAddress == "" {
		c.AdvertisingAddress = protocol.DefaultAdvAddress
	}

	if c.AdvertisingPort == 0 {
		c.AdvertisingPort = protocol.DefaultAdvPort
	}

	if c.AdvertisingInterval == 0 {
		c.AdvertisingInterval = Seconds(protocol.DefaultAdvInterval)
	}

	if c.Timeout == 0 {
		c.Timeout = Seconds(protocol.DefaultConnectionTimeout)
	}

	if c.TxQueueSize == 0 {
		c.TxQueueSize = Bytes(protocol.DefaultTxQueueSize)
	}

	if c.RxQueueSize == 0 {
		c.RxQueueSize = Bytes(protocol.DefaultRxQueueSize)
	}

	return nil
}

// Validate checks the completed configuration against the documented
// constraints.
func (c *Branch) Validate() liberr.Error {
	e := ErrorValidate.Error(nil)

	if err := libval.New().Struct(c); err != nil {
		if er, ok := err.(*libval.InvalidValidationError); ok {
			e.Add(er)
		} else {
			for _, er := range err.(libval.ValidationErrors) {
				//nolint #goerr113
				e.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", er.Namespace(), er.ActualTag()))
			}
		}
	}

	if s := c.TxQueueSize.Size(); s < protocol.MinTxQueueSize || s > protocol.MaxTxQueueSize {
		//nolint #goerr113
		e.Add(fmt.Errorf("config field 'tx_queue_size' must lie within [%d, %d]", protocol.MinTxQueueSize, protocol.MaxTxQueueSize))
	}

	if s := c.RxQueueSize.Size(); s < protocol.MinRxQueueSize || s > protocol.MaxRxQueueSize {
		//nolint #goerr113
		e.Add(fmt.Errorf("config field 'rx_queue_size' must lie within [%d, %d]", protocol.MinRxQueueSize, protocol.MaxRxQueueSize))
	}

	if c.AdvertisingInterval != Seconds(Infinite) && c.AdvertisingInterval.Time() <= 0 {
		//nolint #goerr113
		e.Add(fmt.Errorf("config field 'advertising_interval' must be positive or infinite"))
	}

	if c.Timeout != Seconds(Infinite) && c.Timeout.Time() <= 0 {
		//nolint #goerr113
		e.Add(fmt.Errorf("config field 'timeout' must be positive or infinite"))
	}

	if e.HasParent() {
		return e
	}

	return nil
}

// Hostname returns the local hostname resolved by Complete.
func (c *Branch) Hostname() string {
	return c.hostname
}

// Pid returns the local process id resolved by Complete.
func (c *Branch) Pid() int {
	return c.pid
}
