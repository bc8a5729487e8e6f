package netutil

import (
	"os"
	"path"
	"strings"
)

var sysNetPath = "/sys/class/net"

// IsPhyNic reports whether nic is backed by a device rather than a virtual link.
func IsPhyNic(nic string) bool {
	_, err := os.Stat(path.Join(sysNetPath, nic, "device"))
	return err == nil
}

// NicOperState returns the operational state of nic as the kernel reports
// it ("up", "down", "dormant", ...), "" when unreadable.
func NicOperState(nic string) string {
	data, err := os.ReadFile(path.Join(sysNetPath, nic, "operstate"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
