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

package advertising

import (
	"net"
	"strings"

	liberr "github.com/nabbar/golib/errors"
)

// ResolveInterfaces maps the configured interface tokens to concrete
// network interfaces. Tokens may be adapter names, MAC addresses,
// "localhost" for every loopback adapter or "all" for every adapter.
func ResolveInterfaces(tokens []string) ([]net.Interface, liberr.Error) {
	all, err := net.Interfaces()
	if err != nil {
		return nil, ErrorEnumerateInterfaces.Error(err)
	}

	var res []net.Interface

	add := func(ifc net.Interface) {
		for _, r := range res {
			if r.Index == ifc.Index {
				return
			}
		}

		res = append(res, ifc)
	}

	for _, tok := range tokens {
		switch strings.ToLower(tok) {
		case "all":
			for _, ifc := range all {
				add(ifc)
			}

		case "localhost":
			for _, ifc := range all {
				if ifc.Flags&net.FlagLoopback != 0 {
					add(ifc)
				}
			}

		default:
			for _, ifc := range all {
				if ifc.Name == tok || strings.EqualFold(ifc.HardwareAddr.String(), tok) {
					add(ifc)
				}
			}
		}
	}

	if len(res) == 0 {
		return nil, ErrorEnumerateInterfaces.Error(nil)
	}

	return res, nil
}

// InterfaceAddrs collects the unicast addresses of the given
// interfaces. Interfaces whose addresses cannot be listed are skipped.
func InterfaceAddrs(ifs []net.Interface) []net.IP {
	var res []net.IP

	for i := range ifs {
		addrs, err := ifs[i].Addrs()
		if err != nil {
			continue
		}

		for _, a := range addrs {
			if ipn, ok := a.(*net.IPNet); ok {
				res = append(res, ipn.IP)
			}
		}
	}

	return res
}

// ContainsAllToken reports whether the interface tokens select every
// adapter, in which case address filtering is pointless.
func ContainsAllToken(tokens []string) bool {
	for _, tok := range tokens {
		if strings.EqualFold(tok, "all") {
			return true
		}
	}

	return false
}

// GroupAddr returns the UDP endpoint of the advertising group and
// whether the address actually is multicast.
func GroupAddr(address string, port uint16) (*net.UDPAddr, bool, liberr.Error) {
	ip := net.ParseIP(address)
	if ip == nil {
		return nil, false, ErrorParamEmpty.Error(nil)
	}

	return &net.UDPAddr{IP: ip, Port: int(port)}, ip.IsMulticast(), nil
}
