package link

import (
	"net"
	"slices"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"github.com/zxhio/arpresolve/internal/errcode"
	"github.com/zxhio/arpresolve/pkg/netaddr"
	"github.com/zxhio/arpresolve/pkg/netutil"
)

// Replaced in tests.
var (
	linkByName = netlink.LinkByName
	linkList   = netlink.LinkList
	addrList   = netlink.AddrList
	neighList  = netlink.NeighList
)

// Link is a local Ethernet interface with the IPv4 address used as the ARP
// sender protocol address.
type Link struct {
	Name   string
	Index  int
	MTU    int
	HwAddr netaddr.HwAddr
	IPv4   netaddr.IPv4Addr
	Prefix *net.IPNet
}

// ResolveHardwareAddr returns the hardware address of the named interface.
func ResolveHardwareAddr(name string) (netaddr.HwAddr, error) {
	link, err := linkByName(name)
	if err != nil {
		return netaddr.HwAddr{}, errcode.Wrap(errcode.CodeNotExist, errors.Wrap(err, "netlink.LinkByName"), name)
	}
	return linkHwAddr(link)
}

// ResolveProtocolAddr returns the first IPv4 address of the named interface.
func ResolveProtocolAddr(name string) (netaddr.IPv4Addr, error) {
	link, err := linkByName(name)
	if err != nil {
		return netaddr.IPv4Addr{}, errcode.Wrap(errcode.CodeNotExist, errors.Wrap(err, "netlink.LinkByName"), name)
	}
	addr, err := linkIPv4Addr(link, nil)
	if err != nil {
		return netaddr.IPv4Addr{}, err
	}
	return netaddr.NewIPv4AddrFromIP(addr.IP), nil
}

// LinkByName returns the named link with its first IPv4 address, left zero
// when the link has none.
func LinkByName(name string) (*Link, error) {
	link, err := linkByName(name)
	if err != nil {
		return nil, errcode.Wrap(errcode.CodeNotExist, errors.Wrap(err, "netlink.LinkByName"), name)
	}
	hwAddr, err := linkHwAddr(link)
	if err != nil {
		return nil, err
	}

	attrs := link.Attrs()
	l := &Link{Name: attrs.Name, Index: attrs.Index, MTU: attrs.MTU, HwAddr: hwAddr}
	addr, err := linkIPv4Addr(link, nil)
	switch errcode.CodeOf(err) {
	case errcode.CodeSuccess:
		l.IPv4 = netaddr.NewIPv4AddrFromIP(addr.IP)
		l.Prefix = addr.IPNet
	case errcode.CodeNotExist:
	default:
		return nil, err
	}
	logLink(l)
	return l, nil
}

// LookupLink resolves the interface used to reach target. With an empty name
// the link whose IPv4 subnet contains target is chosen. The sender address
// prefers the interface address on target's subnet.
func LookupLink(name string, target netaddr.IPv4Addr) (*Link, error) {
	var (
		link netlink.Link
		err  error
	)

	if name != "" {
		link, err = linkByName(name)
		if err != nil {
			return nil, errcode.Wrap(errcode.CodeNotExist, errors.Wrap(err, "netlink.LinkByName"), name)
		}
	} else {
		link, err = linkBySubnet(target)
		if err != nil {
			return nil, err
		}
	}

	hwAddr, err := linkHwAddr(link)
	if err != nil {
		return nil, err
	}
	addr, err := linkIPv4Addr(link, target.ToIP())
	if err != nil {
		return nil, err
	}

	attrs := link.Attrs()
	l := &Link{
		Name:   attrs.Name,
		Index:  attrs.Index,
		MTU:    attrs.MTU,
		HwAddr: hwAddr,
		IPv4:   netaddr.NewIPv4AddrFromIP(addr.IP),
		Prefix: addr.IPNet,
	}
	logLink(l)
	return l, nil
}

func logLink(l *Link) {
	state := netutil.NicOperState(l.Name)
	entry := logrus.WithFields(logrus.Fields{
		"name": l.Name, "index": l.Index, "hw_addr": l.HwAddr, "ipv4": l.IPv4,
		"prefix": l.Prefix, "phy": netutil.IsPhyNic(l.Name), "state": state,
	})
	if state == "down" {
		entry.Warn("Link is down")
		return
	}
	entry.Debug("Found link")
}

func linkBySubnet(target netaddr.IPv4Addr) (netlink.Link, error) {
	links, err := linkList()
	if err != nil {
		return nil, errcode.Wrap(errcode.CodeInternal, errors.Wrap(err, "netlink.LinkList"), "list link")
	}

	ip := target.ToIP()
	for _, link := range links {
		if _, err := linkHwAddr(link); err != nil {
			continue
		}
		addrs, err := addrList(link, netlink.FAMILY_V4)
		if err != nil {
			continue
		}
		if slices.ContainsFunc(addrs, func(a netlink.Addr) bool { return a.IPNet != nil && a.Contains(ip) }) {
			return link, nil
		}
	}
	return nil, errcode.New(errcode.CodeNotExist, "no link on the same subnet as %s", target)
}

func linkHwAddr(link netlink.Link) (netaddr.HwAddr, error) {
	attrs := link.Attrs()
	if attrs.Flags&net.FlagLoopback != 0 {
		return netaddr.HwAddr{}, errcode.New(errcode.CodeInvalid, "link %s is a loopback interface", attrs.Name)
	}
	hwAddr, err := netaddr.NewHwAddr(attrs.HardwareAddr)
	if err != nil {
		return netaddr.HwAddr{}, errcode.Wrap(errcode.CodeInvalid, err, "link "+attrs.Name)
	}
	return hwAddr, nil
}

// linkIPv4Addr returns the address whose subnet contains target, or the
// first IPv4 address when none does.
func linkIPv4Addr(link netlink.Link, target net.IP) (netlink.Addr, error) {
	addrs, err := addrList(link, netlink.FAMILY_V4)
	if err != nil {
		return netlink.Addr{}, errcode.Wrap(errcode.CodeInternal, errors.Wrap(err, "netlink.AddrList"), link.Attrs().Name)
	}
	addrs = slices.DeleteFunc(addrs, func(a netlink.Addr) bool { return a.IPNet == nil || a.IP.To4() == nil })
	if len(addrs) == 0 {
		return netlink.Addr{}, errcode.New(errcode.CodeNotExist, "link %s has no ipv4 address", link.Attrs().Name)
	}

	if target != nil {
		idx := slices.IndexFunc(addrs, func(a netlink.Addr) bool { return a.Contains(target) })
		if idx != -1 {
			return addrs[idx], nil
		}
	}
	return addrs[0], nil
}

// LookupNeigh returns the kernel neighbor cache entry for ip on l, if any.
func LookupNeigh(l *Link, ip netaddr.IPv4Addr) (netaddr.HwAddr, bool, error) {
	neighs, err := neighList(l.Index, netlink.FAMILY_V4)
	if err != nil {
		return netaddr.HwAddr{}, false, errors.Wrapf(err, "list link %s neigh", l.Name)
	}

	const unusable = netlink.NUD_INCOMPLETE | netlink.NUD_FAILED
	idx := slices.IndexFunc(neighs, func(n netlink.Neigh) bool {
		return n.IP.Equal(ip.ToIP()) && n.State&unusable == 0 && len(n.HardwareAddr) == len(netaddr.HwAddr{})
	})
	if idx == -1 {
		return netaddr.HwAddr{}, false, nil
	}
	return netaddr.HwAddr(neighs[idx].HardwareAddr), true, nil
}
