package resolver

import (
	"net"
	"time"

	"github.com/zxhio/arpresolve/pkg/netaddr"
)

// Conn is a raw link-layer endpoint bound to one interface. WriteTo takes
// an ARP payload, ReadFrom returns whole link-layer frames.
//
// *link.Socket implements Conn.
type Conn interface {
	Destination(ifname string, hwAddr netaddr.HwAddr) (net.Addr, error)
	WriteTo(b []byte, addr net.Addr) (int, error)
	ReadFrom(b []byte) (int, net.Addr, error)
	SetReadDeadline(t time.Time) error
}
