package builtins

import (
	"github.com/sunholo/aivi/internal/eval"
)

// channel: make -> (sender, receiver); send, recv (Result A Closed),
// close. Backed by eval.ChannelState (an unbuffered native Go channel
// plus a close signal), grounded on the original compiler's internal/effects
// capability-operation idiom generalized to a first-class value pair
// instead of a capability-gated namespace call.
func channelNamespace() *namespace {
	n := newNamespace()
	n.add("make", 0, channelMake)
	n.add("send", 2, channelSend)
	n.add("recv", 1, channelRecv)
	n.add("close", 1, channelClose)
	return n
}

func channelMake(args []eval.Value) (eval.Value, error) {
	state := &eval.ChannelState{Ch: make(chan eval.Value), Closed: make(chan struct{})}
	sender := &eval.ChanEnd{Chan: state, IsSender: true}
	receiver := &eval.ChanEnd{Chan: state, IsSender: false}
	return &eval.Tuple{Items: []eval.Value{sender, receiver}}, nil
}

func channelSend(args []eval.Value) (eval.Value, error) {
	end, ok := args[0].(*eval.ChanEnd)
	if !ok || !end.IsSender {
		return nil, argError("send", "channel Sender", args[0])
	}
	select {
	case <-end.Chan.Closed:
		return errV(&eval.Constructor{TypeName: "Closed", Name: "Closed"}), nil
	default:
	}
	select {
	case end.Chan.Ch <- args[1]:
		return ok2(eval.Unit{}), nil
	case <-end.Chan.Closed:
		return errV(&eval.Constructor{TypeName: "Closed", Name: "Closed"}), nil
	}
}

// ok2 lets channelSend reach the ok helper, which its local `ok` variable shadows.
func ok2(v eval.Value) eval.Value { return ok(v) }

func channelRecv(args []eval.Value) (eval.Value, error) {
	end, okEnd := args[0].(*eval.ChanEnd)
	if !okEnd || end.IsSender {
		return nil, argError("recv", "channel Receiver", args[0])
	}
	select {
	case v := <-end.Chan.Ch:
		return ok2(v), nil
	case <-end.Chan.Closed:
		select {
		case v := <-end.Chan.Ch:
			return ok2(v), nil
		default:
			return errV(&eval.Constructor{TypeName: "Closed", Name: "Closed"}), nil
		}
	}
}

func channelClose(args []eval.Value) (eval.Value, error) {
	end, ok := args[0].(*eval.ChanEnd)
	if !ok {
		return nil, argError("close", "channel end", args[0])
	}
	select {
	case <-end.Chan.Closed:
	default:
		close(end.Chan.Closed)
	}
	return eval.Unit{}, nil
}
