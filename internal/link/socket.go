package link

import (
	"net"
	"os"
	"time"

	"github.com/mdlayher/ethernet"
	"github.com/mdlayher/packet"
	"github.com/pkg/errors"
	"github.com/zxhio/arpresolve/internal/errcode"
	"github.com/zxhio/arpresolve/pkg/netaddr"
	"github.com/zxhio/arpresolve/pkg/netutil"
	"golang.org/x/sys/unix"
)

type packetConn interface {
	ReadFrom(b []byte) (int, net.Addr, error)
	WriteTo(b []byte, addr net.Addr) (int, error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// Socket is an AF_PACKET SOCK_RAW socket bound to one interface for
// EtherType ARP. Writes take an ARP payload and prefix the Ethernet header;
// reads return whole link-layer frames.
type Socket struct {
	conn packetConn
	link *Link
	stat netutil.Statistics
}

func OpenRawSocket(l *Link) (*Socket, error) {
	ifi := &net.Interface{
		Index:        l.Index,
		MTU:          l.MTU,
		Name:         l.Name,
		HardwareAddr: l.HwAddr.HardwareAddr(),
	}
	conn, err := packet.Listen(ifi, packet.Raw, unix.ETH_P_ARP, nil)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, errcode.Wrap(errcode.CodeInvalid, err, "raw socket requires root or CAP_NET_RAW")
		}
		return nil, errcode.Wrap(errcode.CodeInternal, errors.Wrap(err, "packet.Listen"), l.Name)
	}
	return newSocket(conn, l), nil
}

func newSocket(conn packetConn, l *Link) *Socket {
	return &Socket{conn: conn, link: l}
}

// Destination builds the link-layer address for a frame to hwAddr on the
// interface this socket is bound to.
func (s *Socket) Destination(ifname string, hwAddr netaddr.HwAddr) (net.Addr, error) {
	if ifname != s.link.Name {
		return nil, errors.Errorf("socket bound to %s, not %s", s.link.Name, ifname)
	}
	return &packet.Addr{HardwareAddr: hwAddr.HardwareAddr()}, nil
}

// WriteTo sends payload as an ARP frame. An all-zero destination is sent to
// the Ethernet broadcast address.
func (s *Socket) WriteTo(payload []byte, addr net.Addr) (int, error) {
	frame, dst, err := s.buildFrame(payload, addr)
	if err != nil {
		return 0, err
	}

	n, err := s.conn.WriteTo(frame, &packet.Addr{HardwareAddr: dst})
	s.stat.AddTx(n, err)
	if err != nil {
		return 0, errors.Wrap(err, "packet.Conn.WriteTo")
	}
	return len(payload), nil
}

func (s *Socket) buildFrame(payload []byte, addr net.Addr) ([]byte, net.HardwareAddr, error) {
	pa, ok := addr.(*packet.Addr)
	if !ok {
		return nil, nil, errors.Errorf("invalid destination address type %T", addr)
	}
	dst, err := netaddr.NewHwAddr(pa.HardwareAddr)
	if err != nil {
		return nil, nil, err
	}
	if dst.IsZero() {
		dst = netaddr.HwAddrBroadcast
	}

	f := ethernet.Frame{
		Destination: dst.HardwareAddr(),
		Source:      s.link.HwAddr.HardwareAddr(),
		EtherType:   ethernet.EtherTypeARP,
		Payload:     payload,
	}
	b, err := f.MarshalBinary()
	if err != nil {
		return nil, nil, errors.Wrap(err, "ethernet.Frame.MarshalBinary")
	}
	return b, f.Destination, nil
}

func (s *Socket) ReadFrom(b []byte) (int, net.Addr, error) {
	n, addr, err := s.conn.ReadFrom(b)
	if err == nil || !isTimeout(err) {
		s.stat.AddRx(n, err)
	}
	return n, addr, err
}

func (s *Socket) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

func (s *Socket) Close() error {
	return s.conn.Close()
}

func (s *Socket) Stats() netutil.Statistics {
	s.stat.Timestamp = time.Now()
	return s.stat
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
