package builtins

import (
	"net"

	"github.com/sunholo/aivi/internal/effects"
	"github.com/sunholo/aivi/internal/eval"
)

// sockets: listen/accept/connect/send/recv/close over stdlib net (TCP),
// gated on the "Net" capability already used by the original compiler's Net effect
// (httpGet/httpPost). A socket is a Handle{Kind:"Listener"|"Conn"}
// wrapping the real net.Listener/net.Conn.
func socketsNamespace(ctx *effects.EffContext) *namespace {
	n := newNamespace()
	n.add("listen", 1, socketsListen(ctx))
	n.add("accept", 1, socketsAccept(ctx))
	n.add("connect", 1, socketsConnect(ctx))
	n.add("send", 2, socketsSend(ctx))
	n.add("recv", 2, socketsRecv(ctx))
	n.add("close", 1, socketsClose)
	return n
}

func requireNet(ctx *effects.EffContext) error {
	return ctx.RequireCap("Net")
}

func socketsListen(ctx *effects.EffContext) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		if err := requireNet(ctx); err != nil {
			return nil, err
		}
		addr, err := wantText("listen", args[0])
		if err != nil {
			return nil, err
		}
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return errV(eval.Text{Value: err.Error()}), nil
		}
		return ok(&eval.Handle{Kind: "Listener", Impl: ln}), nil
	}
}

func socketsAccept(ctx *effects.EffContext) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		if err := requireNet(ctx); err != nil {
			return nil, err
		}
		h, ok2 := args[0].(*eval.Handle)
		if !ok2 || h.Kind != "Listener" {
			return nil, argError("accept", "Listener Handle", args[0])
		}
		ln := h.Impl.(net.Listener)
		conn, err := ln.Accept()
		if err != nil {
			return errV(eval.Text{Value: err.Error()}), nil
		}
		return ok(&eval.Handle{Kind: "Conn", Impl: conn}), nil
	}
}

func socketsConnect(ctx *effects.EffContext) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		if err := requireNet(ctx); err != nil {
			return nil, err
		}
		addr, err := wantText("connect", args[0])
		if err != nil {
			return nil, err
		}
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return errV(eval.Text{Value: err.Error()}), nil
		}
		return ok(&eval.Handle{Kind: "Conn", Impl: conn}), nil
	}
}

func connFromHandle(fname string, v eval.Value) (net.Conn, error) {
	h, ok := v.(*eval.Handle)
	if !ok || h.Kind != "Conn" {
		return nil, argError(fname, "Conn Handle", v)
	}
	return h.Impl.(net.Conn), nil
}

func socketsSend(ctx *effects.EffContext) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		if err := requireNet(ctx); err != nil {
			return nil, err
		}
		conn, err := connFromHandle("send", args[0])
		if err != nil {
			return nil, err
		}
		data, ok2 := args[1].(eval.Bytes)
		if !ok2 {
			return nil, argError("send", "Bytes", args[1])
		}
		if _, err := conn.Write(data.Value); err != nil {
			return errV(eval.Text{Value: err.Error()}), nil
		}
		return ok(eval.Unit{}), nil
	}
}

func socketsRecv(ctx *effects.EffContext) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		if err := requireNet(ctx); err != nil {
			return nil, err
		}
		conn, err := connFromHandle("recv", args[0])
		if err != nil {
			return nil, err
		}
		n, err := wantInt("recv", args[1])
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		read, err := conn.Read(buf)
		if err != nil {
			return errV(eval.Text{Value: err.Error()}), nil
		}
		return ok(eval.Bytes{Value: buf[:read]}), nil
	}
}

func socketsClose(args []eval.Value) (eval.Value, error) {
	h, ok := args[0].(*eval.Handle)
	if !ok {
		return nil, argError("close", "Handle", args[0])
	}
	switch impl := h.Impl.(type) {
	case net.Conn:
		impl.Close()
	case net.Listener:
		impl.Close()
	}
	return eval.Unit{}, nil
}
