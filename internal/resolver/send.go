package resolver

import (
	"github.com/pkg/errors"
	"github.com/zxhio/arpresolve/internal/errcode"
	"github.com/zxhio/arpresolve/pkg/arppkt"
)

// Send writes msg to the link-layer destination of its target hardware
// address on ifname. Nothing is retried.
func Send(conn Conn, msg arppkt.Message, ifname string) error {
	dst, err := conn.Destination(ifname, msg.TargetHwAddr)
	if err != nil {
		return errcode.Wrap(errcode.CodeTransmission, errors.Wrap(err, "conn.Destination"), ifname)
	}

	data := msg.Append(make([]byte, 0, arppkt.SizeofARP))
	n, err := conn.WriteTo(data, dst)
	if err != nil {
		return errcode.Wrap(errcode.CodeTransmission, errors.Wrap(err, "conn.WriteTo"), ifname)
	}
	if n != len(data) {
		return errcode.New(errcode.CodeTransmission, "short write on %s: %d/%d bytes", ifname, n, len(data))
	}
	return nil
}
