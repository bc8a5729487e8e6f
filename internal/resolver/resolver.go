package resolver

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zxhio/arpresolve/internal/errcode"
	"github.com/zxhio/arpresolve/pkg/arppkt"
	"github.com/zxhio/arpresolve/pkg/netaddr"
	"github.com/zxhio/arpresolve/pkg/netutil"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"
)

type Direction int

const (
	DirectionTx Direction = iota
	DirectionRx
)

func (d Direction) String() string {
	if d == DirectionTx {
		return "tx"
	}
	return "rx"
}

// Source is the local end of a resolution.
type Source struct {
	Interface string
	HwAddr    netaddr.HwAddr
	ProtAddr  netaddr.IPv4Addr
}

// Reply is the accepted answer of a resolution.
type Reply struct {
	Result
	Attempt int
	RTT     time.Duration
}

type resolverOpts struct {
	timeout   time.Duration
	count     int
	interval  time.Duration
	strict    bool
	frameHook func(Direction, []byte)
}

func defaultResolverOpts() resolverOpts {
	return resolverOpts{
		timeout:  time.Second,
		count:    3,
		interval: time.Second,
		strict:   true,
	}
}

type Opt func(*resolverOpts)

// WithTimeout sets how long each attempt waits for a reply. A non-positive
// d leaves attempts without a deadline of their own, so only ctx ends them.
func WithTimeout(d time.Duration) Opt {
	return func(o *resolverOpts) { o.timeout = d }
}

// WithCount sets the number of requests sent before giving up.
func WithCount(n int) Opt {
	return func(o *resolverOpts) { o.count = max(n, 1) }
}

// WithInterval sets the minimum time between two requests.
func WithInterval(d time.Duration) Opt {
	return func(o *resolverOpts) { o.interval = d }
}

// WithStrict enables request/reply correlation. When disabled the first
// recognized frame from another host is accepted, request or reply.
func WithStrict(strict bool) Opt {
	return func(o *resolverOpts) { o.strict = strict }
}

// WithFrameHook calls fn with every frame sent or read. The slice is only
// valid during the call.
func WithFrameHook(fn func(Direction, []byte)) Opt {
	return func(o *resolverOpts) { o.frameHook = fn }
}

// Resolver resolves protocol addresses to hardware addresses over a Conn.
// It is not safe for concurrent use.
type Resolver struct {
	conn    Conn
	src     Source
	opts    resolverOpts
	limiter *rate.Limiter
	buf     []byte
	stat    netutil.Statistics
}

func NewResolver(conn Conn, src Source, opts ...Opt) *Resolver {
	o := defaultResolverOpts()
	for _, opt := range opts {
		opt(&o)
	}

	limit := rate.Inf
	if o.interval > 0 {
		limit = rate.Every(o.interval)
	}
	return &Resolver{
		conn:    conn,
		src:     src,
		opts:    o,
		limiter: rate.NewLimiter(limit, 1),
		buf:     make([]byte, frameBufSize),
	}
}

// Resolve sends up to count requests for target and returns the first
// accepted frame. Unrecognized and unmatched frames are skipped.
func (r *Resolver) Resolve(ctx context.Context, target netaddr.IPv4Addr) (*Reply, error) {
	req := arppkt.NewRequest(r.src.HwAddr, r.src.ProtAddr, target)

	for attempt := 1; attempt <= r.opts.count; attempt++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, errcode.Wrap(errcode.CodeTimeout, err, "resolve "+target.String())
		}

		r.hook(DirectionTx, r.requestFrame(req))
		sent := time.Now()
		err := Send(r.conn, req, r.src.Interface)
		r.stat.AddTx(arppkt.SizeofARP, err)
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"target": target, "iface": r.src.Interface, "attempt": attempt,
		}).Debug("Sent request")

		res, err := r.await(ctx, req)
		if err == nil {
			return &Reply{Result: res, Attempt: attempt, RTT: res.Timestamp.Sub(sent)}, nil
		}
		if !errcode.Is(err, errcode.CodeTimeout) || ctx.Err() != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{"target": target, "attempt": attempt}).Debug("No reply")
	}
	return nil, errcode.New(errcode.CodeTimeout, "no reply from %s after %d attempt(s)", target, r.opts.count)
}

// await reads frames until one is accepted or the attempt times out.
func (r *Resolver) await(ctx context.Context, req arppkt.Message) (Result, error) {
	if r.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.timeout)
		defer cancel()
	}

	for {
		res, frame, err := receiveFrame(ctx, r.conn, r.src.Interface, r.buf)
		if frame != nil {
			r.stat.AddRx(len(frame), nil)
			r.hook(DirectionRx, frame)
		}

		switch errcode.CodeOf(err) {
		case errcode.CodeSuccess:
		case errcode.CodeUnrecognizedFrame:
			r.drop(err.Error())
			continue
		case errcode.CodeReceive:
			r.stat.AddRx(0, err)
			return Result{}, err
		default:
			return Result{}, err
		}

		// The socket also sees frames sent from this host.
		if res.SenderHwAddr == r.src.HwAddr {
			r.drop("own frame")
			continue
		}
		if r.opts.strict && !Matches(req, res) {
			r.drop("unmatched " + res.Operation.String() + " from " + res.SenderProtAddr.String())
			continue
		}
		return res, nil
	}
}

func (r *Resolver) drop(reason string) {
	r.stat.RxDropped++
	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.WithField("reason", reason).Debug("Skip frame")
	}
}

func (r *Resolver) hook(dir Direction, frame []byte) {
	if r.opts.frameHook != nil {
		r.opts.frameHook(dir, frame)
	}
}

// requestFrame is req as it appears on the wire, for the frame hook.
func (r *Resolver) requestFrame(req arppkt.Message) []byte {
	if r.opts.frameHook == nil {
		return nil
	}
	eth := arppkt.EthHeader{
		HwDest:   netaddr.HwAddrBroadcast,
		HwSource: r.src.HwAddr,
		HwProto:  unix.ETH_P_ARP,
	}
	return req.Append(eth.Append(make([]byte, 0, arppkt.SizeofEthernet+arppkt.SizeofARP)))
}

func (r *Resolver) Stats() netutil.Statistics {
	r.stat.Timestamp = time.Now()
	return r.stat
}
