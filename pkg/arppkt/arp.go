package arppkt

import (
	"encoding/binary"
	"fmt"

	"github.com/zxhio/arpresolve/pkg/netaddr"
	"golang.org/x/sys/unix"
)

const (
	HardwareTypeEthernet uint16 = unix.ARPHRD_ETHER
	ProtocolTypeIPv4     uint16 = unix.ETH_P_IP

	HwAddrLen   = uint8(len(netaddr.HwAddr{}))
	ProtAddrLen = uint8(len(netaddr.IPv4Addr{}))

	// <linux/if_arp.h>
	//
	// struct arphdr {
	//     __be16 ar_hrd;        /* format of hardware address	*/
	//     __be16 ar_pro;        /* format of protocol address	*/
	//     unsigned char ar_hln; /* length of hardware address	*/
	//     unsigned char ar_pln; /* length of protocol address	*/
	//     __be16 ar_op;         /* ARP opcode (command)		*/
	// };
	SizeofARPHeader = 8

	// Fixed header followed by sender and target address pairs.
	SizeofARP = SizeofARPHeader + 2*int(HwAddrLen) + 2*int(ProtAddrLen)
)

type Operation uint16

const (
	OperationRequest Operation = 1
	OperationReply   Operation = 2
)

func (op Operation) String() string {
	switch op {
	case OperationRequest:
		return "request"
	case OperationReply:
		return "reply"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(op))
	}
}

func (op Operation) Valid() bool {
	return op == OperationRequest || op == OperationReply
}

// Message is an Ethernet/IPv4 ARP message.
type Message struct {
	HardwareType   uint16
	ProtocolType   uint16
	HardwareSize   uint8
	ProtocolSize   uint8
	Operation      Operation
	SenderHwAddr   netaddr.HwAddr
	SenderProtAddr netaddr.IPv4Addr
	TargetHwAddr   netaddr.HwAddr
	TargetProtAddr netaddr.IPv4Addr
}

// NewRequest builds a who-has request for targetPA. The target hardware
// address is left zero.
func NewRequest(srcHw netaddr.HwAddr, srcPA, targetPA netaddr.IPv4Addr) Message {
	return Message{
		HardwareType:   HardwareTypeEthernet,
		ProtocolType:   ProtocolTypeIPv4,
		HardwareSize:   HwAddrLen,
		ProtocolSize:   ProtAddrLen,
		Operation:      OperationRequest,
		SenderHwAddr:   srcHw,
		SenderProtAddr: srcPA,
		TargetProtAddr: targetPA,
	}
}

func (m Message) Append(b []byte) []byte {
	b = binary.BigEndian.AppendUint16(b, m.HardwareType)
	b = binary.BigEndian.AppendUint16(b, m.ProtocolType)
	b = append(b, m.HardwareSize, m.ProtocolSize)
	b = binary.BigEndian.AppendUint16(b, uint16(m.Operation))
	b = append(b, m.SenderHwAddr[:]...)
	b = append(b, m.SenderProtAddr[:]...)
	b = append(b, m.TargetHwAddr[:]...)
	return append(b, m.TargetProtAddr[:]...)
}

func (m Message) MarshalBinary() ([]byte, error) {
	return m.Append(make([]byte, 0, SizeofARP)), nil
}

// UnmarshalBinary decodes an Ethernet/IPv4 ARP message. Address lengths other
// than 6/4 are rejected before any address byte is read.
func (m *Message) UnmarshalBinary(data []byte) error {
	if len(data) < SizeofARPHeader {
		return ErrPacketTooShort
	}

	hwSize, protSize := data[4], data[5]
	if hwSize != HwAddrLen || protSize != ProtAddrLen {
		return ErrUnsupportedAddrLen
	}
	if len(data) < SizeofARP {
		return ErrPacketTooShort
	}

	m.HardwareType = binary.BigEndian.Uint16(data[0:2])
	m.ProtocolType = binary.BigEndian.Uint16(data[2:4])
	m.HardwareSize = hwSize
	m.ProtocolSize = protSize
	m.Operation = Operation(binary.BigEndian.Uint16(data[6:8]))

	off := SizeofARPHeader
	off += copy(m.SenderHwAddr[:], data[off:])
	off += copy(m.SenderProtAddr[:], data[off:])
	off += copy(m.TargetHwAddr[:], data[off:])
	copy(m.TargetProtAddr[:], data[off:])
	return nil
}
