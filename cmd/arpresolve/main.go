package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zxhio/arpresolve/cmd/arpresolve/resolve"
	"github.com/zxhio/arpresolve/cmd/arpresolve/util"
	"github.com/zxhio/arpresolve/cmd/arpresolve/watch"
	"github.com/zxhio/arpresolve/pkg/builder"
	"github.com/zxhio/arpresolve/pkg/utils"
)

var (
	verbose bool
	version bool
	logFile string
)

const logoAscii = `
  _  _ _|_   _ _  _ _  _ |  _
 (_|| |_)   | (/__>(_)| |\/(/_
      |`

var rootCmd = &cobra.Command{
	Use:   "arpresolve",
	Short: "Resolve IPv4 addresses to hardware addresses with ARP\n" + color.HiBlueString(logoAscii),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.SetVerbose(verbose)
		setupLogger()
	},
	Run: func(cmd *cobra.Command, args []string) {
		if version {
			fmt.Println(builder.BuildInfo())
			os.Exit(0)
		}
		cmd.Help()
	},
}

func setupLogger() {
	logrus.SetLevel(logrus.WarnLevel)
	if logFile != "" {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetOutput(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		})
	}
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

func main() {
	cobra.EnableTraverseRunHooks = true
	resolve.Export(rootCmd)
	watch.Export(rootCmd)
	util.DisableSortFlags(rootCmd)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to a rotating file")
	rootCmd.Flags().BoolVarP(&version, "version", "V", false, "Print version")
	rootCmd.Execute()
}
