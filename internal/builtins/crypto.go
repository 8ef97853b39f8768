package builtins

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/sunholo/aivi/internal/eval"
)

// crypto: sha256 (stdlib, no pack alternative — justified), randomUuid
// (google/uuid, seen indirectly in the pack via termfx-morfx), randomBytes
// (stdlib crypto/rand — justified, a CSPRNG has no third-party substitute
// worth adding).
func cryptoNamespace() *namespace {
	n := newNamespace()
	n.add("sha256", 1, cryptoSHA256)
	n.add("randomUuid", 0, cryptoRandomUUID)
	n.add("randomBytes", 1, cryptoRandomBytes)
	return n
}

func cryptoSHA256(args []eval.Value) (eval.Value, error) {
	s, err := wantText("sha256", args[0])
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(s))
	return eval.Text{Value: hex.EncodeToString(sum[:])}, nil
}

func cryptoRandomUUID(args []eval.Value) (eval.Value, error) {
	return eval.Text{Value: uuid.New().String()}, nil
}

func cryptoRandomBytes(args []eval.Value) (eval.Value, error) {
	n, err := wantInt("randomBytes", args[0])
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, argError("randomBytes", "non-negative Int", args[0])
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return eval.Bytes{Value: buf}, nil
}
