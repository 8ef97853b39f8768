package effects

import (
	"testing"

	"github.com/sunholo/aivi/internal/eval"
)

// TestIntegration_EffContextFlow exercises the capability-gated
// dispatch path an interpreter session drives through Call.
func TestIntegration_EffContextFlow(t *testing.T) {
	effCtx := NewEffContext()
	if effCtx.HasCap("IO") {
		t.Error("should not have IO capability by default")
	}

	if _, err := Call(effCtx, "IO", "println", []eval.Value{eval.Text{Value: "test"}}); err == nil {
		t.Error("expected capability error")
	}

	effCtx.Grant(NewCapability("IO"))
	if !effCtx.HasCap("IO") {
		t.Error("should have IO capability after Grant")
	}
	if _, err := Call(effCtx, "IO", "println", []eval.Value{eval.Text{Value: "test"}}); err != nil {
		t.Errorf("println with IO granted should succeed, got %v", err)
	}
}
