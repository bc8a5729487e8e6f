package arppkt

import (
	"encoding/binary"

	"github.com/zxhio/arpresolve/pkg/netaddr"
	"golang.org/x/sys/unix"
)

const (
	SizeofEthernet = 14 // sizeof(struct ethhdr)
	SizeofVLAN     = 4  // sizeof(struct vlan_hdr)

	// MaxFrameSize is the largest untagged Ethernet frame without FCS.
	MaxFrameSize = 1500 + SizeofEthernet
)

// <linux/if_ether.h>
//
//	struct ethhdr {
//	    unsigned char h_dest[6];
//	    unsigned char h_source[6];
//	    __be16 h_proto;
//	};

type EthHeader struct {
	HwDest   netaddr.HwAddr
	HwSource netaddr.HwAddr
	HwProto  uint16
}

func DecodeEthHeader(data []byte) (EthHeader, error) {
	if len(data) < SizeofEthernet {
		return EthHeader{}, ErrPacketTooShort
	}

	var eth EthHeader
	copy(eth.HwDest[:], data[0:6])
	copy(eth.HwSource[:], data[6:12])
	eth.HwProto = binary.BigEndian.Uint16(data[12:14])
	return eth, nil
}

func (eth EthHeader) Append(b []byte) []byte {
	b = append(b, eth.HwDest[:]...)
	b = append(b, eth.HwSource[:]...)
	return binary.BigEndian.AppendUint16(b, eth.HwProto)
}

// <linux/if_vlan.h>
//
//	struct vlan_hdr {
//	    __be16 h_vlan_TCI;
//	    __be16 h_vlan_encapsulated_proto;
//	};

type VLANHeader struct {
	TCI               uint16
	EncapsulatedProto uint16
}

func (vlan VLANHeader) ID() uint16 { return vlan.TCI & 0x0fff }

func DecodeVLANHeader(data []byte) (VLANHeader, error) {
	if len(data) < SizeofVLAN {
		return VLANHeader{}, ErrPacketTooShort
	}
	return VLANHeader{
		TCI:               binary.BigEndian.Uint16(data[0:2]),
		EncapsulatedProto: binary.BigEndian.Uint16(data[2:4]),
	}, nil
}

func isVLAN(proto uint16) bool { return proto == unix.ETH_P_8021Q }
