package resolver

import (
	"context"

	"github.com/pkg/errors"
	"github.com/zxhio/arpresolve/internal/errcode"
)

// Watch passes every recognized ARP request and reply read from conn to fn
// until ctx is done, which is not an error. Unrecognized frames are skipped.
func Watch(ctx context.Context, conn Conn, ifname string, fn func(Result) error) error {
	buf := make([]byte, frameBufSize)
	for {
		res, _, err := receiveFrame(ctx, conn, ifname, buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			if errcode.Is(err, errcode.CodeUnrecognizedFrame) {
				continue
			}
			return err
		}
		if err := fn(res); err != nil {
			return err
		}
	}
}
