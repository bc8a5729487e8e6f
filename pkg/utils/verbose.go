package utils

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

var (
	verbose       bool
	verboseOutput io.Writer = os.Stdout
)

func SetVerbose(v bool) {
	verbose = v
}

func IsVerbose() bool { return verbose }

func SetVerboseOutput(w io.Writer) {
	verboseOutput = w
}

func VerbosePrintln(format string, a ...any) {
	if !verbose {
		return
	}
	fmt.Fprintf(verboseOutput, format, a...)
	fmt.Fprintln(verboseOutput)
}

// VerboseHexDump prints data in `hexdump -C` layout under a title line.
func VerboseHexDump(title string, data []byte) {
	if !verbose {
		return
	}
	fmt.Fprintf(verboseOutput, "%s hexdump %d bytes\n%s", title, len(data), hex.Dump(data))
}
