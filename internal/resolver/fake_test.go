package resolver

import (
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/mdlayher/packet"
	"github.com/stretchr/testify/require"
	"github.com/zxhio/arpresolve/pkg/netaddr"
)

var (
	testSrc = Source{
		Interface: "eth0",
		HwAddr:    netaddr.HwAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		ProtAddr:  netaddr.IPv4Addr{10, 0, 0, 5},
	}
	testPeerHw = netaddr.HwAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	testPeerPA = netaddr.IPv4Addr{10, 0, 0, 1}
)

// fakeConn is an in-memory Conn honoring read deadlines.
type fakeConn struct {
	mu       sync.Mutex
	frames   chan []byte
	deadline time.Time
	changed  chan struct{}

	written [][]byte
	dsts    []netaddr.HwAddr
	onWrite func(payload []byte)

	destErr  error
	writeErr error
	readErr  error
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan []byte, 64), changed: make(chan struct{})}
}

func (c *fakeConn) push(frames ...[]byte) {
	for _, f := range frames {
		c.frames <- f
	}
}

func (c *fakeConn) Destination(ifname string, hwAddr netaddr.HwAddr) (net.Addr, error) {
	if c.destErr != nil {
		return nil, c.destErr
	}
	c.mu.Lock()
	c.dsts = append(c.dsts, hwAddr)
	c.mu.Unlock()
	return &packet.Addr{HardwareAddr: hwAddr.HardwareAddr()}, nil
}

func (c *fakeConn) WriteTo(b []byte, addr net.Addr) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	c.mu.Lock()
	c.written = append(c.written, append([]byte(nil), b...))
	c.mu.Unlock()
	if c.onWrite != nil {
		c.onWrite(b)
	}
	return len(b), nil
}

func (c *fakeConn) ReadFrom(b []byte) (int, net.Addr, error) {
	if c.readErr != nil {
		return 0, nil, c.readErr
	}
	for {
		c.mu.Lock()
		deadline, changed := c.deadline, c.changed
		c.mu.Unlock()

		var (
			timer   *time.Timer
			timeout <-chan time.Time
		)
		if !deadline.IsZero() {
			d := time.Until(deadline)
			if d <= 0 {
				return 0, nil, os.ErrDeadlineExceeded
			}
			timer = time.NewTimer(d)
			timeout = timer.C
		}

		select {
		case f := <-c.frames:
			if timer != nil {
				timer.Stop()
			}
			return copy(b, f), &packet.Addr{}, nil
		case <-timeout:
			return 0, nil, os.ErrDeadlineExceeded
		case <-changed:
			if timer != nil {
				timer.Stop()
			}
		}
	}
}

func (c *fakeConn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadline = t
	close(c.changed)
	c.changed = make(chan struct{})
	return nil
}

func (c *fakeConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.written)
}

type testARP struct {
	op       uint16
	senderHw netaddr.HwAddr
	senderPA netaddr.IPv4Addr
	targetHw netaddr.HwAddr
	targetPA netaddr.IPv4Addr
}

func newTestFrame(t *testing.T, a testARP) []byte {
	eth := &layers.Ethernet{
		SrcMAC:       a.senderHw.HardwareAddr(),
		DstMAC:       a.targetHw.HardwareAddr(),
		EthernetType: layers.EthernetTypeARP,
	}
	if a.targetHw.IsZero() {
		eth.DstMAC = netaddr.HwAddrBroadcast.HardwareAddr()
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         a.op,
		SourceHwAddress:   a.senderHw[:],
		SourceProtAddress: a.senderPA[:],
		DstHwAddress:      a.targetHw[:],
		DstProtAddress:    a.targetPA[:],
	}

	buf := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, eth, arp)
	require.NoError(t, err)
	return buf.Bytes()
}

// newTestReply is testPeer answering testSrc.
func newTestReply(t *testing.T) []byte {
	return newTestFrame(t, testARP{
		op:       layers.ARPReply,
		senderHw: testPeerHw,
		senderPA: testPeerPA,
		targetHw: testSrc.HwAddr,
		targetPA: testSrc.ProtAddr,
	})
}
