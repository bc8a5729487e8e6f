package watch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zxhio/arpresolve/cmd/arpresolve/util"
	"github.com/zxhio/arpresolve/internal/link"
	"github.com/zxhio/arpresolve/internal/report"
	"github.com/zxhio/arpresolve/internal/resolver"
	"github.com/zxhio/arpresolve/pkg/utils"
)

var watchCmd = cobra.Command{
	Use:     "watch",
	Short:   "Print ARP requests and replies seen on an interface",
	Aliases: []string{"w"},
	Run: func(cmd *cobra.Command, args []string) {
		runWatch()
	},
}

var (
	ifaceName string
	count     int
	duration  time.Duration
	summary   bool
)

var errCountReached = errors.New("count reached")

func init() {
	util.DisableSortFlags(&watchCmd)
	watchCmd.Flags().StringVarP(&ifaceName, "interface", "i", "", "Interface name")
	watchCmd.Flags().IntVarP(&count, "count", "c", 0, "Exit after this many frames, 0 unlimited")
	watchCmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Exit after this long, 0 unlimited")
	watchCmd.Flags().BoolVar(&summary, "summary", false, "Print the hosts seen and frame statistics on exit")
	watchCmd.MarkFlagRequired("interface")
}

func runWatch() {
	start := time.Now()

	l, err := link.LinkByName(ifaceName)
	utils.CheckErrorAndExit(err, "Lookup link failed")

	var closers utils.NamedClosers
	s, err := util.OpenSocket(l, &closers)
	utils.CheckErrorAndExit(err, "Open raw socket failed")

	ctx, cancel := util.SignalContext()
	defer cancel()
	if duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	if l.IPv4.IsZero() {
		fmt.Printf("Listening on %s %s\n", l.Name, report.FormatHardwareAddr(l.HwAddr))
	} else {
		fmt.Printf("Listening on %s %s %s\n", l.Name, report.FormatHardwareAddr(l.HwAddr), report.FormatProtocolAddr(l.IPv4))
	}

	hosts := report.NewHostTable()
	n := 0
	err = resolver.Watch(ctx, s, l.Name, func(res resolver.Result) error {
		fmt.Println(report.FormatResult(res))
		hosts.Add(res)
		n++
		if count > 0 && n >= count {
			return errCountReached
		}
		return nil
	})
	if errors.Is(err, errCountReached) {
		err = nil
	}
	util.CloseAll(closers)
	logrus.WithFields(logrus.Fields{"iface": l.Name, "frames": n, "hosts": hosts.Len()}).Info("Watch done")

	if summary {
		fmt.Println()
		hosts.Render(os.Stdout)
		fmt.Println()
		report.PrintStats(os.Stdout, s.Stats(), time.Since(start))
	}
	utils.CheckErrorAndExit(err, "Watch failed")
}

func Export(parent *cobra.Command) {
	parent.AddCommand(&watchCmd)
}
