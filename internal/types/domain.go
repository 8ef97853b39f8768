package types

import "fmt"

// Domain is a named operator-overload table tied to a host type:
// `domain N over T = { ... }` (spec §4.2/§5). It may declare a Delta sum
// type usable with `+`/`-` against the host type, and literal-suffix
// bindings (`1w`, `1ms`) that desugar to Delta constructors.
type Domain struct {
	Name    string
	Host    Type
	Delta   Type // nil if this domain has no Delta
	Ops     map[string]Type
	Suffix  map[string]string // literal suffix (e.g. "w") -> Delta constructor name
}

// DomainEnv indexes every in-scope domain by host type, so an operator
// use `a + b` can find every domain whose host matches operand a.
type DomainEnv struct {
	byHost map[string][]*Domain
	byName map[string]*Domain
}

func NewDomainEnv() *DomainEnv {
	return &DomainEnv{byHost: map[string][]*Domain{}, byName: map[string]*Domain{}}
}

func (e *DomainEnv) Add(d *Domain) {
	e.byName[d.Name] = d
	key := headKey(d.Host)
	e.byHost[key] = append(e.byHost[key], d)
}

// ResolveOp finds the domain(s) over op's host type that define op.
// Exactly one must match; zero is "no domain defines this operator for
// this type" (falls back to the builtin Num/Eq/Ord dispatch), and more
// than one is E1705 (ambiguous domain) since the language has no further
// disambiguation rule once two sibling domains both claim the same
// operator on the same host.
func (e *DomainEnv) ResolveOp(op string, host Type) (*Domain, error) {
	var matches []*Domain
	for _, d := range e.byHost[headKey(host)] {
		if _, ok := d.Ops[op]; ok {
			matches = append(matches, d)
		}
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, d := range matches {
			names[i] = d.Name
		}
		return nil, &AmbiguousDomainError{Op: op, Host: host, Domains: names}
	}
}

// ResolveSuffix finds the domain whose literal suffix matches, used to
// desugar a numeric literal like `1w` into `Delta` constructor
// application during elaboration.
func (e *DomainEnv) ResolveSuffix(suffix string) (*Domain, string, bool) {
	for _, d := range e.byName {
		if ctor, ok := d.Suffix[suffix]; ok {
			return d, ctor, true
		}
	}
	return nil, "", false
}

// DeltaOpType is the inferred type of `T + Delta` / `T - Delta` for a
// domain that declares one: both sides typed, result is the host type.
func (d *Domain) DeltaOpType() (*Func, bool) {
	if d.Delta == nil {
		return nil, false
	}
	return &Func{Params: []Type{d.Host, d.Delta}, Eff: EmptyEffectRow(), Result: d.Host}, true
}

// AmbiguousDomainError reports two or more sibling domains claiming the
// same operator over the same host type (E1705).
type AmbiguousDomainError struct {
	Op      string
	Host    Type
	Domains []string
}

func (e *AmbiguousDomainError) Error() string {
	return fmt.Sprintf("ambiguous domain for operator %q over %s: %v", e.Op, e.Host.String(), e.Domains)
}
