package report

import (
	"fmt"

	"github.com/google/gopacket/macs"
	"github.com/zxhio/arpresolve/pkg/netaddr"
)

// FormatHardwareAddr formats hw as six colon-separated uppercase hex pairs.
func FormatHardwareAddr(hw netaddr.HwAddr) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", hw[0], hw[1], hw[2], hw[3], hw[4], hw[5])
}

// FormatProtocolAddr formats pa as four dot-separated decimals.
func FormatProtocolAddr(pa netaddr.IPv4Addr) string {
	return fmt.Sprintf("%d.%d.%d.%d", pa[0], pa[1], pa[2], pa[3])
}

// Vendor returns the IEEE OUI registrant of hw, or "" when unknown or hw is
// locally administered.
func Vendor(hw netaddr.HwAddr) string {
	if hw[0]&0x02 != 0 {
		return ""
	}
	return macs.ValidMACPrefixMap[[3]byte{hw[0], hw[1], hw[2]}]
}
