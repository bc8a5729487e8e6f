package netaddr

import (
	"bytes"
	"net"

	"github.com/pkg/errors"
)

// HwAddr is an Ethernet hardware address. The bytes are opaque and kept in
// wire order.
type HwAddr [6]byte

var (
	HwAddrZero      = HwAddr{}
	HwAddrBroadcast = HwAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

func NewHwAddr(mac net.HardwareAddr) (HwAddr, error) {
	if len(mac) != len(HwAddr{}) {
		return HwAddr{}, errors.Errorf("invalid hardware address length: %d", len(mac))
	}
	return HwAddr(mac), nil
}

func (HwAddr) Type() string {
	return "HwAddr"
}

func (addr HwAddr) String() string {
	return net.HardwareAddr(addr[:]).String()
}

func (addr *HwAddr) Set(s string) error {
	mac, err := net.ParseMAC(s)
	if err != nil {
		return err
	}
	v, err := NewHwAddr(mac)
	if err != nil {
		return err
	}
	*addr = v
	return nil
}

func (addr HwAddr) IsZero() bool      { return addr == HwAddrZero }
func (addr HwAddr) IsBroadcast() bool { return addr == HwAddrBroadcast }

func (addr HwAddr) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(addr[:])
}

func (addr HwAddr) Compare(other HwAddr) int {
	return bytes.Compare(addr[:], other[:])
}
