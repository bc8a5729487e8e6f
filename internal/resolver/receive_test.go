package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/zxhio/arpresolve/internal/errcode"
	"github.com/zxhio/arpresolve/pkg/arppkt"
	"github.com/zxhio/arpresolve/pkg/netaddr"
)

func TestReceiveReply(t *testing.T) {
	conn := newFakeConn()
	conn.push(newTestFrame(t, testARP{
		op:       layers.ARPReply,
		senderHw: netaddr.HwAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		senderPA: netaddr.IPv4Addr{192, 168, 1, 1},
		targetHw: netaddr.HwAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		targetPA: netaddr.IPv4Addr{192, 168, 1, 100},
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	before := time.Now()
	res, err := Receive(ctx, conn, "eth0")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, arppkt.OperationReply, res.Operation)
	assert.Equal(t, netaddr.HwAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, res.SenderHwAddr)
	assert.Equal(t, netaddr.IPv4Addr{192, 168, 1, 1}, res.SenderProtAddr)
	assert.Equal(t, netaddr.HwAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}, res.TargetHwAddr)
	assert.Equal(t, netaddr.IPv4Addr{192, 168, 1, 100}, res.TargetProtAddr)
	assert.Equal(t, "eth0", res.Interface)
	assert.False(t, res.Timestamp.Before(before))
}

func TestReceiveRequest(t *testing.T) {
	req := arppkt.NewRequest(testSrc.HwAddr, testSrc.ProtAddr, testPeerPA)
	eth := arppkt.EthHeader{HwDest: netaddr.HwAddrBroadcast, HwSource: testSrc.HwAddr, HwProto: 0x0806}

	conn := newFakeConn()
	conn.push(req.Append(eth.Append(nil)))

	res, err := Receive(context.Background(), conn, "eth0")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, arppkt.OperationRequest, res.Operation)
	assert.Equal(t, testSrc.HwAddr, res.SenderHwAddr)
	assert.Equal(t, testSrc.ProtAddr, res.SenderProtAddr)
	assert.True(t, res.TargetHwAddr.IsZero())
	assert.Equal(t, testPeerPA, res.TargetProtAddr)
}

func TestReceiveUnrecognized(t *testing.T) {
	valid := newTestReply(t)

	withByte := func(off int, v byte) []byte {
		b := append([]byte(nil), valid...)
		b[off] = v
		return b
	}

	testCases := []struct {
		name  string
		frame []byte
	}{
		{name: "empty", frame: []byte{}},
		{name: "link_header_only", frame: valid[:arppkt.SizeofEthernet]},
		{name: "one_byte_short", frame: valid[:arppkt.SizeofEthernet+arppkt.SizeofARP-1]},
		{name: "hw_size_8", frame: withByte(arppkt.SizeofEthernet+4, 8)},
		{name: "prot_size_16", frame: withByte(arppkt.SizeofEthernet+5, 16)},
		{name: "opcode_0", frame: withByte(arppkt.SizeofEthernet+7, 0)},
		{name: "opcode_3", frame: withByte(arppkt.SizeofEthernet+7, 3)},
		{name: "ethertype_ipv4", frame: withByte(13, 0x00)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conn := newFakeConn()
			conn.push(tc.frame)

			res, err := Receive(context.Background(), conn, "eth0")
			assert.Equal(t, errcode.CodeUnrecognizedFrame, errcode.CodeOf(err), "%v", err)
			assert.Zero(t, res)
		})
	}
}

func TestReceiveTimeout(t *testing.T) {
	conn := newFakeConn()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Receive(ctx, conn, "eth0")
	assert.Equal(t, errcode.CodeTimeout, errcode.CodeOf(err))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestReceiveCancel(t *testing.T) {
	conn := newFakeConn()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := Receive(ctx, conn, "eth0")
	assert.Equal(t, errcode.CodeTimeout, errcode.CodeOf(err))
	assert.ErrorIs(t, err, context.Canceled)

	// Already cancelled.
	_, err = Receive(ctx, conn, "eth0")
	assert.Equal(t, errcode.CodeTimeout, errcode.CodeOf(err))
}

func TestReceiveError(t *testing.T) {
	conn := newFakeConn()
	conn.readErr = errors.New("bad file descriptor")

	_, err := Receive(context.Background(), conn, "eth0")
	assert.Equal(t, errcode.CodeReceive, errcode.CodeOf(err))
	assert.True(t, errors.Is(err, errcode.Kind(errcode.CodeReceive)))
}
