package report

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/zxhio/arpresolve/internal/resolver"
	"github.com/zxhio/arpresolve/pkg/arppkt"
	"github.com/zxhio/arpresolve/pkg/humanize"
	"github.com/zxhio/arpresolve/pkg/netaddr"
	"github.com/zxhio/arpresolve/pkg/netutil"
	"github.com/zxhio/arpresolve/pkg/utils"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.SeparatorsNone,
				Lines:      tw.LinesNone,
			},
		})),
	)
}

// Neigh is the kernel neighbor cache view of a resolved address.
type Neigh struct {
	HwAddr netaddr.HwAddr
	Found  bool
}

func (n Neigh) Describe(resolved netaddr.HwAddr) string {
	switch {
	case !n.Found:
		return "-"
	case n.HwAddr == resolved:
		return "same"
	default:
		return color.YellowString(FormatHardwareAddr(n.HwAddr))
	}
}

// PrintReply writes the reply to a resolution as a single-row table. neigh
// adds a column comparing the kernel neighbor cache entry.
func PrintReply(w io.Writer, reply *resolver.Reply, neigh *Neigh) error {
	headers := []string{"Interface", "IP", "MAC", "Vendor", "Attempt", "RTT"}
	row := []string{
		reply.Interface,
		FormatProtocolAddr(reply.SenderProtAddr),
		color.GreenString(FormatHardwareAddr(reply.SenderHwAddr)),
		vendorOrDash(reply.SenderHwAddr),
		fmt.Sprintf("%d", reply.Attempt),
		humanize.Duration(reply.RTT),
	}
	if neigh != nil {
		headers = append(headers, "Neigh")
		row = append(row, neigh.Describe(reply.SenderHwAddr))
	}

	tbl := newTable(w)
	tbl.Header(headers)
	tbl.Append(row)
	return tbl.Render()
}

// PrintStats writes the frame counters of a resolver or watch.
func PrintStats(w io.Writer, stat netutil.Statistics, elapsed time.Duration) error {
	tbl := newTable(w)
	tbl.Header([]string{"tx_pkts", "tx_bytes", "tx_errs", "rx_pkts", "rx_bytes", "rx_errs", "rx_dropped", "elapsed"})
	tbl.Append([]string{
		fmt.Sprintf("%d", stat.TxPackets),
		humanize.Bytes(int(stat.TxBytes)),
		fmt.Sprintf("%d", stat.TxErrors),
		fmt.Sprintf("%d", stat.RxPackets),
		humanize.Bytes(int(stat.RxBytes)),
		fmt.Sprintf("%d", stat.RxErrors),
		fmt.Sprintf("%d", stat.RxDropped),
		humanize.Duration(elapsed),
	})
	return tbl.Render()
}

// FormatResult is the one-line form of a watched frame.
func FormatResult(res resolver.Result) string {
	ts := res.Timestamp.Format("15:04:05.000000")
	sender := FormatHardwareAddr(res.SenderHwAddr)
	if v := Vendor(res.SenderHwAddr); v != "" {
		sender += " (" + v + ")"
	}

	switch res.Operation {
	case arppkt.OperationRequest:
		return fmt.Sprintf("%s %s %s who-has %s tell %s %s", ts, res.Interface, color.CyanString("request"),
			FormatProtocolAddr(res.TargetProtAddr), FormatProtocolAddr(res.SenderProtAddr), sender)
	default:
		return fmt.Sprintf("%s %s %s %s is-at %s", ts, res.Interface, color.GreenString("reply  "),
			FormatProtocolAddr(res.SenderProtAddr), sender)
	}
}

// HostTable collects the senders seen by a watch.
type HostTable struct {
	hosts map[netaddr.IPv4Addr]*host
}

type host struct {
	ip       netaddr.IPv4Addr
	hwAddrs  []netaddr.HwAddr
	requests int
	replies  int
	lastSeen time.Time
}

func NewHostTable() *HostTable {
	return &HostTable{hosts: make(map[netaddr.IPv4Addr]*host)}
}

func (t *HostTable) Add(res resolver.Result) {
	// Probes carry no sender protocol address.
	if res.SenderProtAddr.IsZero() {
		return
	}

	h, ok := t.hosts[res.SenderProtAddr]
	if !ok {
		h = &host{ip: res.SenderProtAddr}
		t.hosts[res.SenderProtAddr] = h
	}
	h.hwAddrs = utils.SliceAppendUnique(h.hwAddrs, res.SenderHwAddr)
	if res.Operation == arppkt.OperationRequest {
		h.requests++
	} else {
		h.replies++
	}
	h.lastSeen = res.Timestamp
}

func (t *HostTable) Len() int { return len(t.hosts) }

// Render writes one row per sender protocol address, ordered by address.
// Addresses claimed by more than one hardware address are highlighted.
func (t *HostTable) Render(w io.Writer) error {
	hosts := make([]*host, 0, len(t.hosts))
	for _, h := range t.hosts {
		hosts = append(hosts, h)
	}
	slices.SortFunc(hosts, func(a, b *host) int { return a.ip.Compare(b.ip) })

	data := [][]string{}
	for _, h := range hosts {
		for i, hw := range h.hwAddrs {
			mac := FormatHardwareAddr(hw)
			if len(h.hwAddrs) > 1 {
				mac = color.RedString(mac)
			}
			row := []string{"", mac, vendorOrDash(hw), "", "", ""}
			if i == 0 {
				row[0] = FormatProtocolAddr(h.ip)
				row[3] = fmt.Sprintf("%d", h.requests)
				row[4] = fmt.Sprintf("%d", h.replies)
				row[5] = h.lastSeen.Format("15:04:05")
			}
			data = append(data, row)
		}
	}

	tbl := newTable(w)
	tbl.Header([]string{"IP", "MAC", "Vendor", "Requests", "Replies", "Last Seen"})
	tbl.Bulk(data)
	return tbl.Render()
}

func vendorOrDash(hw netaddr.HwAddr) string {
	if v := Vendor(hw); v != "" {
		return v
	}
	return "-"
}
