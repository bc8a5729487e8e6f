package arppkt

import (
	"errors"

	"golang.org/x/sys/unix"
)

var (
	ErrPacketTooShort            = errors.New("packet too short")
	ErrPacketInvalidEthernetType = errors.New("invalid ethernet type")
	ErrUnsupportedAddrType       = errors.New("unsupported hardware/protocol type")
	ErrUnsupportedAddrLen        = errors.New("unsupported hardware/protocol address length")
	ErrUnsupportedOperation      = errors.New("unsupported arp operation")
)

// Frame is a received link-layer frame carrying an ARP message.
type Frame struct {
	Ethernet EthHeader
	VLAN     *VLANHeader
	ARP      Message
}

// ParseFrame validates data as an Ethernet frame (optionally with a single
// 802.1Q tag) carrying an Ethernet/IPv4 ARP request or reply.
func ParseFrame(data []byte) (Frame, error) {
	if len(data) < SizeofEthernet+SizeofARP {
		return Frame{}, ErrPacketTooShort
	}

	var (
		frame Frame
		err   error
	)
	frame.Ethernet, err = DecodeEthHeader(data)
	if err != nil {
		return Frame{}, err
	}
	off := SizeofEthernet
	proto := frame.Ethernet.HwProto

	if isVLAN(proto) {
		if len(data) < SizeofEthernet+SizeofVLAN+SizeofARP {
			return Frame{}, ErrPacketTooShort
		}
		vlan, err := DecodeVLANHeader(data[off:])
		if err != nil {
			return Frame{}, err
		}
		frame.VLAN = &vlan
		off += SizeofVLAN
		proto = vlan.EncapsulatedProto
	}

	if proto != unix.ETH_P_ARP {
		return Frame{}, ErrPacketInvalidEthernetType
	}

	if err := frame.ARP.UnmarshalBinary(data[off:]); err != nil {
		return Frame{}, err
	}
	if frame.ARP.HardwareType != HardwareTypeEthernet || frame.ARP.ProtocolType != ProtocolTypeIPv4 {
		return Frame{}, ErrUnsupportedAddrType
	}
	if !frame.ARP.Operation.Valid() {
		return Frame{}, ErrUnsupportedOperation
	}
	return frame, nil
}
