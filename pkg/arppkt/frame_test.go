package arppkt

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/zxhio/arpresolve/pkg/netaddr"
)

func serialize(layers ...gopacket.SerializableLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	err := gopacket.SerializeLayers(buf, opts, layers...)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newTestLayerEth(ethType layers.EthernetType) *layers.Ethernet {
	return &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		DstMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		EthernetType: ethType,
	}
}

func newTestLayerARP(op uint16) *layers.ARP {
	return &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         op,
		SourceHwAddress:   []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		SourceProtAddress: []byte{192, 168, 1, 1},
		DstHwAddress:      []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstProtAddress:    []byte{192, 168, 1, 100},
	}
}

func TestParseFrameReply(t *testing.T) {
	data, err := serialize(newTestLayerEth(layers.EthernetTypeARP), newTestLayerARP(layers.ARPReply))
	if !assert.NoError(t, err) {
		return
	}

	frame, err := ParseFrame(data)
	if !assert.NoError(t, err) {
		return
	}
	assert.Nil(t, frame.VLAN)
	assert.Equal(t, uint16(0x0806), frame.Ethernet.HwProto)
	assert.Equal(t, netaddr.HwAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}, frame.Ethernet.HwDest)
	assert.Equal(t, OperationReply, frame.ARP.Operation)
	assert.Equal(t, netaddr.HwAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, frame.ARP.SenderHwAddr)
	assert.Equal(t, netaddr.IPv4Addr{192, 168, 1, 1}, frame.ARP.SenderProtAddr)
	assert.Equal(t, netaddr.IPv4Addr{192, 168, 1, 100}, frame.ARP.TargetProtAddr)
}

func TestParseFrameRequestRoundTrip(t *testing.T) {
	req := NewRequest(testSrcHw, testSrcPA, testTargetPA)
	eth := EthHeader{HwDest: netaddr.HwAddrBroadcast, HwSource: testSrcHw, HwProto: 0x0806}
	data := req.Append(eth.Append(nil))

	frame, err := ParseFrame(data)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, req, frame.ARP)
	assert.Equal(t, "00:11:22:33:44:55", frame.ARP.SenderHwAddr.String())
	assert.Equal(t, "10.0.0.5", frame.ARP.SenderProtAddr.String())
	assert.Equal(t, "10.0.0.1", frame.ARP.TargetProtAddr.String())
	assert.True(t, frame.ARP.TargetHwAddr.IsZero())
	assert.Equal(t, OperationRequest, frame.ARP.Operation)

	// gopacket must agree with our encoding.
	pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
	arpLayer, ok := pkt.Layer(layers.LayerTypeARP).(*layers.ARP)
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, uint16(layers.ARPRequest), arpLayer.Operation)
	assert.Equal(t, []byte(testSrcHw[:]), arpLayer.SourceHwAddress)
	assert.Equal(t, []byte(testTargetPA[:]), arpLayer.DstProtAddress)
}

func TestParseFrameVLAN(t *testing.T) {
	data, err := serialize(
		newTestLayerEth(layers.EthernetTypeDot1Q),
		&layers.Dot1Q{VLANIdentifier: 10, Type: layers.EthernetTypeARP},
		newTestLayerARP(layers.ARPReply),
	)
	if !assert.NoError(t, err) {
		return
	}

	frame, err := ParseFrame(data)
	if !assert.NoError(t, err) {
		return
	}
	if assert.NotNil(t, frame.VLAN) {
		assert.Equal(t, uint16(10), frame.VLAN.ID())
	}
	assert.Equal(t, OperationReply, frame.ARP.Operation)
	assert.Equal(t, netaddr.IPv4Addr{192, 168, 1, 1}, frame.ARP.SenderProtAddr)
}

func TestParseFrameInvalid(t *testing.T) {
	reply, err := serialize(newTestLayerEth(layers.EthernetTypeARP), newTestLayerARP(layers.ARPReply))
	if !assert.NoError(t, err) {
		return
	}

	ipv4, err := serialize(newTestLayerEth(layers.EthernetTypeIPv4),
		&layers.IPv4{Version: 4, IHL: 5, SrcIP: net.IPv4(10, 0, 0, 1), DstIP: net.IPv4(10, 0, 0, 2)},
		gopacket.Payload(make([]byte, 32)))
	if !assert.NoError(t, err) {
		return
	}

	mutate := func(f func(arp *layers.ARP)) []byte {
		arp := newTestLayerARP(layers.ARPReply)
		f(arp)
		data, err := serialize(newTestLayerEth(layers.EthernetTypeARP), arp)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	testCases := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", []byte{}, ErrPacketTooShort},
		{"three_bytes", []byte{1, 2, 3}, ErrPacketTooShort},
		{"eth_header_only", reply[:SizeofEthernet], ErrPacketTooShort},
		{"one_short", reply[:SizeofEthernet+SizeofARP-1], ErrPacketTooShort},
		{"ipv4", ipv4, ErrPacketInvalidEthernetType},
		{"opcode_0", mutate(func(a *layers.ARP) { a.Operation = 0 }), ErrUnsupportedOperation},
		{"opcode_3", mutate(func(a *layers.ARP) { a.Operation = 3 }), ErrUnsupportedOperation},
		{"opcode_ffff", mutate(func(a *layers.ARP) { a.Operation = 0xffff }), ErrUnsupportedOperation},
		{"hw_type", mutate(func(a *layers.ARP) { a.AddrType = layers.LinkTypeIEEE802_11 }), ErrUnsupportedAddrType},
		{"prot_type", mutate(func(a *layers.ARP) { a.Protocol = layers.EthernetTypeIPv6 }), ErrUnsupportedAddrType},
		{"hw_size", mutate(func(a *layers.ARP) {
			a.HwAddressSize = 8
			a.SourceHwAddress = make([]byte, 8)
			a.DstHwAddress = make([]byte, 8)
		}), ErrUnsupportedAddrLen},
		{"prot_size", mutate(func(a *layers.ARP) {
			a.ProtAddressSize = 16
			a.SourceProtAddress = make([]byte, 16)
			a.DstProtAddress = make([]byte, 16)
		}), ErrUnsupportedAddrLen},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFrame(tc.data)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestParseFrameShortVLAN(t *testing.T) {
	data, err := serialize(
		newTestLayerEth(layers.EthernetTypeDot1Q),
		&layers.Dot1Q{VLANIdentifier: 10, Type: layers.EthernetTypeARP},
		newTestLayerARP(layers.ARPReply),
	)
	if !assert.NoError(t, err) {
		return
	}

	// Long enough for an untagged frame, too short once the tag is skipped.
	_, err = ParseFrame(data[:SizeofEthernet+SizeofARP])
	assert.ErrorIs(t, err, ErrPacketTooShort)
}
