package resolve

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zxhio/arpresolve/cmd/arpresolve/util"
	"github.com/zxhio/arpresolve/internal/errcode"
	"github.com/zxhio/arpresolve/internal/link"
	"github.com/zxhio/arpresolve/internal/report"
	"github.com/zxhio/arpresolve/internal/resolver"
	"github.com/zxhio/arpresolve/pkg/arppkt"
	"github.com/zxhio/arpresolve/pkg/netaddr"
	"github.com/zxhio/arpresolve/pkg/utils"
)

var resolveCmd = cobra.Command{
	Use:     "resolve <ipv4>",
	Short:   "Resolve the hardware address of an IPv4 address",
	Aliases: []string{"r"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target, err := netaddr.ParseIPv4Addr(args[0])
		if err != nil {
			err = errcode.Wrap(errcode.CodeInvalid, err, "target")
		}
		utils.CheckErrorAndExit(err, "Invalid target")
		runResolve(target)
	},
}

var (
	ifaceName string
	timeout   time.Duration
	count     int
	interval  time.Duration
	strict    bool
	sourceIP  netaddr.IPv4Addr
	neigh     bool
	stats     bool
)

func init() {
	util.DisableSortFlags(&resolveCmd)
	resolveCmd.Flags().StringVarP(&ifaceName, "interface", "i", "", "Interface name, default the interface on the target subnet")
	resolveCmd.Flags().DurationVarP(&timeout, "timeout", "t", time.Second, "Time to wait for a reply to each request, 0 waits until interrupted")
	resolveCmd.Flags().IntVarP(&count, "count", "c", 3, "Number of requests before giving up")
	resolveCmd.Flags().DurationVar(&interval, "interval", time.Second, "Minimum time between requests")
	resolveCmd.Flags().BoolVar(&strict, "strict", true, "Only accept replies matching the request")
	resolveCmd.Flags().VarP(&sourceIP, "source-ip", "s", "Sender protocol address, default the interface address")
	resolveCmd.Flags().BoolVar(&neigh, "neigh", false, "Compare with the kernel neighbor cache")
	resolveCmd.Flags().BoolVar(&stats, "stats", false, "Print frame statistics")
}

func runResolve(target netaddr.IPv4Addr) {
	start := time.Now()

	l, err := link.LookupLink(ifaceName, target)
	utils.CheckErrorAndExit(err, "Lookup link failed")

	src := resolver.Source{Interface: l.Name, HwAddr: l.HwAddr, ProtAddr: l.IPv4}
	if !sourceIP.IsZero() {
		src.ProtAddr = sourceIP
	}

	var closers utils.NamedClosers
	s, err := util.OpenSocket(l, &closers)
	utils.CheckErrorAndExit(err, "Open raw socket failed")

	opts := []resolver.Opt{
		resolver.WithTimeout(timeout),
		resolver.WithCount(count),
		resolver.WithInterval(interval),
		resolver.WithStrict(strict),
	}
	if utils.IsVerbose() {
		opts = append(opts, resolver.WithFrameHook(dumpFrame))
	}
	r := resolver.NewResolver(s, src, opts...)

	ctx, cancel := util.SignalContext()
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"target": target, "iface": src.Interface, "hw_addr": src.HwAddr, "ipv4": src.ProtAddr,
	}).Info("Resolve")
	reply, err := r.Resolve(ctx, target)
	util.CloseAll(closers)

	if stats {
		report.PrintStats(os.Stdout, r.Stats(), time.Since(start))
	}
	utils.CheckErrorAndExit(err, "Resolve "+target.String()+" failed")
	logrus.WithFields(logrus.Fields{
		"target": target, "hw_addr": reply.SenderHwAddr, "attempt": reply.Attempt, "rtt": reply.RTT,
	}).Info("Resolved")

	var n *report.Neigh
	if neigh {
		hw, found, err := link.LookupNeigh(l, target)
		if err != nil {
			logrus.WithError(err).Warn("Fail to lookup neigh")
		} else {
			n = &report.Neigh{HwAddr: hw, Found: found}
		}
	}
	err = report.PrintReply(os.Stdout, reply, n)
	utils.CheckErrorAndExit(err, "Print reply failed")
}

func dumpFrame(dir resolver.Direction, frame []byte) {
	utils.VerbosePrintln("%s %s", strings.ToUpper(dir.String()), arppkt.FormatFrame(frame, arppkt.WithFormatEthernet()))
	utils.VerboseHexDump(strings.ToUpper(dir.String()), frame)
}

func Export(parent *cobra.Command) {
	parent.AddCommand(&resolveCmd)
}
