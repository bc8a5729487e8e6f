package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/zxhio/arpresolve/internal/errcode"
	"github.com/zxhio/arpresolve/pkg/arppkt"
)

func TestWatch(t *testing.T) {
	conn := newFakeConn()
	conn.push(
		newTestFrame(t, testARP{op: layers.ARPRequest, senderHw: testSrc.HwAddr, senderPA: testSrc.ProtAddr, targetPA: testPeerPA}),
		[]byte{0x01, 0x02, 0x03},
		newTestReply(t),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var results []Result
	err := Watch(ctx, conn, "eth0", func(res Result) error {
		results = append(results, res)
		if len(results) == 2 {
			cancel()
		}
		return nil
	})
	assert.NoError(t, err)
	if assert.Len(t, results, 2) {
		assert.Equal(t, arppkt.OperationRequest, results[0].Operation)
		assert.Equal(t, arppkt.OperationReply, results[1].Operation)
		assert.Equal(t, testPeerHw, results[1].SenderHwAddr)
	}
}

func TestWatchDeadline(t *testing.T) {
	for i := 0; i < 50; i++ {
		conn := newFakeConn()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Millisecond)
		err := Watch(ctx, conn, "eth0", func(Result) error { return nil })
		cancel()
		if !assert.NoError(t, err, "run %d", i) {
			return
		}
	}
}

// lateContext has an expired deadline but is not done yet, as when the
// socket deadline fires before the context timer.
type lateContext struct {
	context.Context
	deadline time.Time
}

func (c lateContext) Deadline() (time.Time, bool) { return c.deadline, true }

func TestWatchSocketDeadlineFirst(t *testing.T) {
	ctx := lateContext{Context: context.Background(), deadline: time.Now().Add(-time.Millisecond)}

	_, err := Receive(ctx, newFakeConn(), "eth0")
	assert.Equal(t, errcode.CodeTimeout, errcode.CodeOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = Watch(ctx, newFakeConn(), "eth0", func(Result) error { return nil })
	assert.NoError(t, err)
}

func TestWatchErrors(t *testing.T) {
	conn := newFakeConn()
	conn.push(newTestReply(t))

	stop := errors.New("stop")
	err := Watch(context.Background(), conn, "eth0", func(Result) error { return stop })
	assert.ErrorIs(t, err, stop)

	conn = newFakeConn()
	conn.readErr = errors.New("bad file descriptor")
	err = Watch(context.Background(), conn, "eth0", func(Result) error { return nil })
	assert.Equal(t, errcode.CodeReceive, errcode.CodeOf(err))
}
