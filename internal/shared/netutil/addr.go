// Package netutil holds small address-formatting helpers shared by the
// master and slave entrypoints.
package netutil

import (
	"fmt"
	"net"
)

// AdvertiseAddr turns a listener's bind address (which may have an empty
// host, e.g. ":8081") into an address other processes can dial, by
// substituting the configured advertise host for whatever host bindAddr
// carries.
func AdvertiseAddr(bindAddr, host string) (string, error) {
	_, port, err := net.SplitHostPort(bindAddr)
	if err != nil {
		return "", fmt.Errorf("netutil: split bind address %q: %w", bindAddr, err)
	}
	return net.JoinHostPort(host, port), nil
}

// AdvertiseURL is AdvertiseAddr with an "http://" scheme prefix, for
// building a bucket.Server's base fetch URL.
func AdvertiseURL(bindAddr, host string) (string, error) {
	addr, err := AdvertiseAddr(bindAddr, host)
	if err != nil {
		return "", err
	}
	return "http://" + addr, nil
}
