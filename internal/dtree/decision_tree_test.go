package dtree

import (
	"testing"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/kernel"
)

func ctorArm(name string) kernel.MatchArm {
	return kernel.MatchArm{Pattern: ast.ConstructorPattern{Name: ast.SpannedName{Name: name}}}
}

func wildcardArm() kernel.MatchArm {
	return kernel.MatchArm{Pattern: ast.WildcardPattern{}}
}

func TestCompile_ConstructorArmsGetCaseBuckets(t *testing.T) {
	arms := []kernel.MatchArm{ctorArm("Some"), ctorArm("None")}
	tree := Compile(arms)

	if len(tree.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(tree.Cases))
	}
	if g, ok := tree.Cases[ConstructorKey("Some")]; !ok || g.ArmIndices[0] != 0 {
		t.Errorf("missing or wrong case for Some: %+v", tree.Cases)
	}
	if g, ok := tree.Cases[ConstructorKey("None")]; !ok || g.ArmIndices[0] != 1 {
		t.Errorf("missing or wrong case for None: %+v", tree.Cases)
	}
	if len(tree.Default.ArmIndices) != 2 {
		t.Errorf("expected every arm to also land in Default, got %v", tree.Default.ArmIndices)
	}
}

func TestCompile_WildcardHasNoCaseBucket(t *testing.T) {
	arms := []kernel.MatchArm{ctorArm("Some"), wildcardArm()}
	tree := Compile(arms)

	if len(tree.Cases) != 1 {
		t.Fatalf("expected only the constructor arm to get a bucket, got %d", len(tree.Cases))
	}
	if len(tree.Default.ArmIndices) != 2 {
		t.Errorf("expected both arms in Default (wildcard always catches), got %v", tree.Default.ArmIndices)
	}
}

func TestCandidateArms_UnknownKeyFallsToDefault(t *testing.T) {
	arms := []kernel.MatchArm{ctorArm("Some"), wildcardArm()}
	tree := Compile(arms)

	candidates := tree.CandidateArms("")
	if len(candidates) != 2 {
		t.Errorf("expected Default's full arm list for an unknown key, got %v", candidates)
	}

	candidates = tree.CandidateArms(ConstructorKey("Some"))
	if len(candidates) != 1 || candidates[0] != 0 {
		t.Errorf("expected only arm 0 for key Some, got %v", candidates)
	}
}

func TestWorthCompiling(t *testing.T) {
	tests := []struct {
		name     string
		arms     []kernel.MatchArm
		expected bool
	}{
		{"single constructor arm", []kernel.MatchArm{ctorArm("Some")}, false},
		{"wildcard only", []kernel.MatchArm{wildcardArm(), wildcardArm()}, false},
		{"two constructors", []kernel.MatchArm{ctorArm("Some"), ctorArm("None")}, true},
		{"constructor plus wildcard fallback", []kernel.MatchArm{ctorArm("Some"), ctorArm("None"), wildcardArm()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorthCompiling(tt.arms); got != tt.expected {
				t.Errorf("WorthCompiling() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKey_WildcardHasNoKey(t *testing.T) {
	if _, ok := Key(ast.WildcardPattern{}); ok {
		t.Error("expected wildcard pattern to have no dispatch key")
	}
	if _, ok := Key(ast.IdentPattern{}); ok {
		t.Error("expected ident pattern to have no dispatch key")
	}
}
