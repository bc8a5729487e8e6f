package arppkt

import (
	"fmt"
	"net"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

type formatOpts struct {
	showEthernet bool
}

type FormatOpt func(*formatOpts)

func WithFormatEthernet() FormatOpt {
	return func(o *formatOpts) { o.showEthernet = true }
}

type FormatDelimiter string

const (
	FormatDelimiterNone  FormatDelimiter = ""
	FormatDelimiterSpace FormatDelimiter = " "
	FormatDelimiterComma FormatDelimiter = ", "
	FormatDelimiterColon FormatDelimiter = ": "
)

type LayerFormatter interface {
	LayerType() gopacket.LayerType
	Format(layer gopacket.Layer, opts ...FormatOpt) (string, FormatDelimiter)
}

var formatters map[gopacket.LayerType]LayerFormatter

func init() {
	formatters = make(map[gopacket.LayerType]LayerFormatter)

	Register(LayerFormatterEthernet{})
	Register(LayerFormatterVLAN{})
	Register(LayerFormatterARP{})
}

func Register(layer LayerFormatter) {
	formatters[layer.LayerType()] = layer
}

func GetLayerFormatter(layerType gopacket.LayerType) (LayerFormatter, bool) {
	formatter, ok := formatters[layerType]
	return formatter, ok
}

// FormatFrame renders an Ethernet frame the way tcpdump -e does, e.g.
//
//	00:11:22:33:44:55 > ff:ff:ff:ff:ff:ff, ethertype ARP (0x0806), length 42: Request who-has 10.0.0.1 tell 10.0.0.5, length 28
func FormatFrame(data []byte, opts ...FormatOpt) string {
	pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.NoCopy)

	var b strings.Builder
	for _, layer := range pkt.Layers() {
		formatter, ok := GetLayerFormatter(layer.LayerType())
		if !ok {
			continue
		}
		s, delim := formatter.Format(layer, opts...)
		if s == "" {
			continue
		}
		b.WriteString(s)
		b.WriteString(string(delim))
	}
	if errLayer := pkt.ErrorLayer(); errLayer != nil {
		b.WriteString(fmt.Sprintf("[%s]", errLayer.Error()))
	}
	return strings.TrimSpace(b.String())
}

// 02:42:6d:09:05:c4 > ff:ff:ff:ff:ff:ff, ethertype ARP (0x0806), length 42:
type LayerFormatterEthernet struct{}

func (LayerFormatterEthernet) LayerType() gopacket.LayerType { return layers.LayerTypeEthernet }

func (LayerFormatterEthernet) Format(layer gopacket.Layer, opts ...FormatOpt) (string, FormatDelimiter) {
	var o formatOpts
	for _, opt := range opts {
		opt(&o)
	}

	eth := layer.(*layers.Ethernet)
	if o.showEthernet {
		delim := FormatDelimiterColon
		if eth.EthernetType == layers.EthernetTypeDot1Q {
			delim = FormatDelimiterComma
		}
		return fmt.Sprintf("%s > %s, ethertype %s (0x%04x), length %d",
			eth.SrcMAC, eth.DstMAC, eth.EthernetType, int(eth.EthernetType), len(eth.Contents)+len(eth.Payload)), delim
	}

	// not show anything
	return "", FormatDelimiterNone
}

// vlan 32, p 0, ethertype ARP (0x0806)
type LayerFormatterVLAN struct{}

func (LayerFormatterVLAN) LayerType() gopacket.LayerType { return layers.LayerTypeDot1Q }

func (LayerFormatterVLAN) Format(layer gopacket.Layer, opts ...FormatOpt) (string, FormatDelimiter) {
	var o formatOpts
	for _, opt := range opts {
		opt(&o)
	}

	vlan := layer.(*layers.Dot1Q)
	if o.showEthernet {
		return fmt.Sprintf("vlan %d, p %d, ethertype %s (0x%04x)",
			vlan.VLANIdentifier, vlan.Priority, vlan.Type, int(vlan.Type)), FormatDelimiterColon
	}
	return fmt.Sprintf("vlan %d", vlan.VLANIdentifier), FormatDelimiterComma
}

// Request who-has 172.17.0.1 tell 172.17.0.10, length 28
// Reply 172.17.0.1 is-at 02:42:6d:09:05:c4, length 28
type LayerFormatterARP struct{}

func (LayerFormatterARP) LayerType() gopacket.LayerType { return layers.LayerTypeARP }

func (LayerFormatterARP) Format(layer gopacket.Layer, opts ...FormatOpt) (string, FormatDelimiter) {
	arp := layer.(*layers.ARP)
	var s string
	switch arp.Operation {
	case layers.ARPRequest:
		s = fmt.Sprintf("Request who-has %s tell %s, length %d",
			net.IP(arp.DstProtAddress), net.IP(arp.SourceProtAddress), len(arp.Contents))
	case layers.ARPReply:
		s = fmt.Sprintf("Reply %s is-at %s, length %d",
			net.IP(arp.SourceProtAddress), net.HardwareAddr(arp.SourceHwAddress), len(arp.Contents))
	default:
		s = fmt.Sprintf("unknown arp operation %d", arp.Operation)
	}
	return s, FormatDelimiterNone
}
