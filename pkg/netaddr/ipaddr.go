package netaddr

import (
	"bytes"
	"fmt"
	"net"
)

// IPv4Addr is an IPv4 address as its 4 wire bytes, never as an integer.
type IPv4Addr [4]byte

func (v4 IPv4Addr) ToIP() net.IP {
	return net.IPv4(v4[0], v4[1], v4[2], v4[3])
}

func (IPv4Addr) Type() string {
	return "IPv4Addr"
}

func (v4 IPv4Addr) String() string {
	return v4.ToIP().String()
}

func (v4 *IPv4Addr) Set(s string) error {
	ip := net.ParseIP(s)
	if ip == nil || ip.To4() == nil {
		return fmt.Errorf("invalid ipv4: %s", s)
	}
	*v4 = NewIPv4AddrFromIP(ip)
	return nil
}

func (v4 IPv4Addr) IsZero() bool { return v4 == IPv4Addr{} }

func (v4 IPv4Addr) Compare(other IPv4Addr) int {
	return bytes.Compare(v4[:], other[:])
}

// NewIPv4AddrFromIP returns the zero address when ip is not an IPv4 address.
func NewIPv4AddrFromIP(ip net.IP) IPv4Addr {
	ip = ip.To4()
	if ip == nil {
		return IPv4Addr{}
	}
	return IPv4Addr(ip)
}

func ParseIPv4Addr(s string) (IPv4Addr, error) {
	var v4 IPv4Addr
	err := v4.Set(s)
	return v4, err
}
