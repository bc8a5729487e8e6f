package util

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zxhio/arpresolve/internal/link"
	"github.com/zxhio/arpresolve/pkg/utils"
)

func DisableSortFlags(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		cmd.InheritedFlags().SortFlags = false
		cmd.PersistentFlags().SortFlags = false
		cmd.Flags().SortFlags = false
	}
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// OpenSocket opens the raw ARP socket of l and registers it in closers.
func OpenSocket(l *link.Link, closers *utils.NamedClosers) (*link.Socket, error) {
	s, err := link.OpenRawSocket(l)
	if err != nil {
		return nil, err
	}
	closers.Add("socket "+l.Name, s.Close)
	logrus.WithFields(logrus.Fields{"iface": l.Name, "index": l.Index}).Info("Opened raw socket")
	return s, nil
}

// CloseAll closes closers in reverse order, logging each result.
func CloseAll(closers utils.NamedClosers) {
	closers.Close(&utils.CloseOpt{
		ReverseOrder: true,
		Output:       logrus.Debug,
		ErrorOutput:  logrus.Warn,
	})
}
