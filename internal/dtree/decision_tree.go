// Package dtree compiles a Kernel Match's arms into a decision tree
// instead of re-testing patterns linearly arm by arm (spec §3 supplemented
// feature: "the original compiler's internal/dtree already compiles match arms into
// a decision tree rather than re-testing patterns linearly; this repo
// keeps that strategy for kernel match lowering"). Adapted from the
// original compiler's internal/dtree.DecisionTreeCompiler, generalized from
// core.CorePattern to internal/ast.Pattern (AIVI's own pattern AST, reused
// unchanged from the surface grammar through HIR and Kernel).
//
// The tree only narrows the *top-level* discriminant of each arm's
// pattern (a constructor's name) into buckets;
// once a bucket is reached the interpreter still runs an ordinary
// recursive pattern match against that arm's real pattern to bind
// sub-patterns and evaluate the guard. This mirrors the original compiler's own
// one-column-at-a-time compileMatrix, scoped to what the interpreter
// actually needs: a fast reject of arms that can't possibly match.
package dtree

import (
	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/kernel"
)

// DecisionTree is a compiled dispatch plan for one Match.
type DecisionTree interface{ isDecisionTree() }

// LeafGroup is an ordered list of original arm indices that share a
// top-level discriminant (or none, in the Default bucket) and must be
// tried in declaration order with a full pattern match.
type LeafGroup struct{ ArmIndices []int }

func (*LeafGroup) isDecisionTree() {}

// Tree dispatches on the scrutinee's top-level shape: a constructor's
// name picks Cases[key]; anything else
// (literal/wildcard/ident patterns, or a shape the Cases map never saw) falls to
// Default, which also contains every case's arms again in original order
// so multi-key ambiguity and fallthrough wildcards are honored exactly
// as linear trial would be.
type Tree struct {
	Cases   map[string]*LeafGroup
	Default *LeafGroup
}

func (*Tree) isDecisionTree() {}

// ConstructorKey is the dispatch key for a constructor named name; both
// Key (from a pattern) and eval (from a runtime Constructor value) must
// produce identical keys for CandidateArms pruning to work.
func ConstructorKey(name string) string { return "ctor:" + name }

// Key returns the dispatch key for a Match scrutinee's top-level pattern
// tag, or ("", false) when the pattern is a catch-all (wildcard/ident, or
// any non-constructor pattern) that belongs only in Default. Only
// constructor patterns get a fast-path bucket: that's the one case where
// a runtime value's discriminant (its constructor name) is cheaply known
// before a full recursive pattern match runs.
func Key(p ast.Pattern) (string, bool) {
	if v, ok := p.(ast.ConstructorPattern); ok {
		return ConstructorKey(v.Name.Name), true
	}
	return "", false
}

// Compile builds a Tree from a Kernel Match's arms. Every arm lands in
// Default (since a later wildcard arm can always catch an earlier
// specific one's leftovers at runtime when the earlier one's guard
// fails); arms with a constructor discriminant additionally get
// a fast-path bucket under Cases.
func Compile(arms []kernel.MatchArm) *Tree {
	t := &Tree{Cases: map[string]*LeafGroup{}, Default: &LeafGroup{}}
	for i, a := range arms {
		t.Default.ArmIndices = append(t.Default.ArmIndices, i)
		if key, ok := Key(a.Pattern); ok {
			g, exists := t.Cases[key]
			if !exists {
				g = &LeafGroup{}
				t.Cases[key] = g
			}
			g.ArmIndices = append(g.ArmIndices, i)
		}
	}
	return t
}

// WorthCompiling mirrors the original compiler's heuristic: a tree only pays for
// itself once there are at least two constructor arms to
// discriminate between; a Match with fewer should just be tried linearly.
func WorthCompiling(arms []kernel.MatchArm) bool {
	n := 0
	for _, a := range arms {
		if _, ok := Key(a.Pattern); ok {
			n++
		}
	}
	return n >= 2
}

// CandidateArms returns, in declaration order, the arm indices worth
// trying for a scrutinee whose runtime discriminant is key (from
// eval's own Key-equivalent extraction of the evaluated value), or all
// arms in Default order when key is unknown ("").
func (t *Tree) CandidateArms(key string) []int {
	if g, ok := t.Cases[key]; ok && key != "" {
		return g.ArmIndices
	}
	return t.Default.ArmIndices
}
