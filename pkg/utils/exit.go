package utils

import (
	"errors"
	"fmt"
	"os"
)

type exitStatuser interface {
	ExitStatus() int
}

// CheckErrorAndExit exits with the status carried by err when it has one,
// 1 otherwise.
func CheckErrorAndExit(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", msg, err)
		os.Exit(ExitStatus(err))
	}
}

func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var e exitStatuser
	if errors.As(err, &e) {
		return e.ExitStatus()
	}
	return 1
}
