package resolver

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/zxhio/arpresolve/internal/errcode"
	"github.com/zxhio/arpresolve/pkg/arppkt"
	"github.com/zxhio/arpresolve/pkg/netaddr"
)

// Room for one 802.1Q tag on top of a full untagged frame.
const frameBufSize = arppkt.MaxFrameSize + arppkt.SizeofVLAN

// Result is the ARP message of an accepted frame.
type Result struct {
	Operation      arppkt.Operation
	SenderHwAddr   netaddr.HwAddr
	SenderProtAddr netaddr.IPv4Addr
	TargetHwAddr   netaddr.HwAddr
	TargetProtAddr netaddr.IPv4Addr
	Interface      string
	Timestamp      time.Time
}

func newResult(msg arppkt.Message, ifname string, ts time.Time) Result {
	return Result{
		Operation:      msg.Operation,
		SenderHwAddr:   msg.SenderHwAddr,
		SenderProtAddr: msg.SenderProtAddr,
		TargetHwAddr:   msg.TargetHwAddr,
		TargetProtAddr: msg.TargetProtAddr,
		Interface:      ifname,
		Timestamp:      ts,
	}
}

// Receive reads one frame from conn and returns its ARP message.
//
// The context deadline is the socket read deadline and cancelling ctx
// unblocks the read. Without a deadline Receive blocks until a frame
// arrives.
func Receive(ctx context.Context, conn Conn, ifname string) (Result, error) {
	res, _, err := receiveFrame(ctx, conn, ifname, make([]byte, frameBufSize))
	return res, err
}

// receiveFrame is Receive reading into buf. The returned frame aliases buf
// and is set whenever a frame was read, recognized or not.
func receiveFrame(ctx context.Context, conn Conn, ifname string, buf []byte) (Result, []byte, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, nil, errcode.Wrap(errcode.CodeTimeout, err, "receive on "+ifname)
	}

	// Zero deadline clears any deadline left by a previous read.
	deadline, _ := ctx.Deadline()
	if err := conn.SetReadDeadline(deadline); err != nil {
		return Result{}, nil, errcode.Wrap(errcode.CodeReceive, errors.Wrap(err, "conn.SetReadDeadline"), ifname)
	}

	done := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(done)
		conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer func() {
		if !stop() {
			<-done
		}
	}()

	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, nil, errcode.Wrap(errcode.CodeTimeout, ctx.Err(), "receive on "+ifname)
		}
		if isTimeout(err) {
			// The socket deadline may fire before the context timer.
			if !deadline.IsZero() && !time.Now().Before(deadline) {
				err = context.DeadlineExceeded
			}
			return Result{}, nil, errcode.Wrap(errcode.CodeTimeout, err, "receive on "+ifname)
		}
		return Result{}, nil, errcode.Wrap(errcode.CodeReceive, errors.Wrap(err, "conn.ReadFrom"), ifname)
	}
	ts := time.Now()

	frame := buf[:n]
	f, err := arppkt.ParseFrame(frame)
	if err != nil {
		return Result{}, frame, errcode.Wrap(errcode.CodeUnrecognizedFrame, err, ifname)
	}
	return newResult(f.ARP, ifname, ts), frame, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
