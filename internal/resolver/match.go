package resolver

import "github.com/zxhio/arpresolve/pkg/arppkt"

// Matches reports whether res answers req: a reply from the requested
// protocol address to the requester's protocol address, sent to the
// requester's hardware address or with the target hardware address left zero.
func Matches(req arppkt.Message, res Result) bool {
	return res.Operation == arppkt.OperationReply &&
		res.SenderProtAddr == req.TargetProtAddr &&
		res.TargetProtAddr == req.SenderProtAddr &&
		(res.TargetHwAddr == req.SenderHwAddr || res.TargetHwAddr.IsZero())
}
