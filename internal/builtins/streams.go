package builtins

import (
	"net"

	"github.com/sunholo/aivi/internal/effects"
	"github.com/sunholo/aivi/internal/eval"
)

// streams wrap a Conn Handle with a fixed chunk size (spec §6: "streams
// wrap a socket with a chunk size"); `open` builds the wrapper, `read`
// pulls the next chunk (possibly short at EOF), and `chunks` is a pure
// function that re-chunks any List into fixed-size frames, with the
// final frame possibly short, independent of sockets entirely.
type streamHandle struct {
	conn      net.Conn
	chunkSize int64
}

func streamsNamespace(ctx *effects.EffContext) *namespace {
	n := newNamespace()
	n.add("open", 2, streamsOpen)
	n.add("read", 1, streamsRead(ctx))
	n.add("chunks", 2, streamsChunks)
	return n
}

func streamsOpen(args []eval.Value) (eval.Value, error) {
	conn, err := connFromHandle("open", args[0])
	if err != nil {
		return nil, err
	}
	size, err := wantInt("open", args[1])
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, argError("open", "positive chunk size", args[1])
	}
	return &eval.Handle{Kind: "Stream", Impl: &streamHandle{conn: conn, chunkSize: size}}, nil
}

func streamsRead(ctx *effects.EffContext) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		if err := requireNet(ctx); err != nil {
			return nil, err
		}
		h, ok2 := args[0].(*eval.Handle)
		if !ok2 || h.Kind != "Stream" {
			return nil, argError("read", "Stream Handle", args[0])
		}
		sh := h.Impl.(*streamHandle)
		buf := make([]byte, sh.chunkSize)
		n, err := sh.conn.Read(buf)
		if err != nil {
			return errV(eval.Text{Value: err.Error()}), nil
		}
		return ok(eval.Bytes{Value: buf[:n]}), nil
	}
}

// chunks(n, source) splits source (any List) into fixed-size sublists,
// the last possibly shorter than n.
func streamsChunks(args []eval.Value) (eval.Value, error) {
	n, err := wantInt("chunks", args[0])
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, argError("chunks", "positive chunk size", args[0])
	}
	src, err := wantList("chunks", args[1])
	if err != nil {
		return nil, err
	}
	var out []eval.Value
	for i := 0; i < len(src.Items); i += int(n) {
		end := i + int(n)
		if end > len(src.Items) {
			end = len(src.Items)
		}
		chunk := make([]eval.Value, end-i)
		copy(chunk, src.Items[i:end])
		out = append(out, &eval.List{Items: chunk})
	}
	return &eval.List{Items: out}, nil
}
