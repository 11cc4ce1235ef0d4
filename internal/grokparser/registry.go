package grokparser

import (
	"fmt"
	"strings"

	"github.com/asen/hustlog/internal/errs"
	"github.com/vjeantet/grok"
)

// Registry wraps the third-party grok pattern compiler
// (github.com/vjeantet/grok), layering the CLI-level knobs the design
// calls for: extra inline patterns, a patterns file, and the option to
// start from an empty base pattern set.
type Registry struct {
	g *grok.Grok
}

// RegistryOptions mirrors the grok-related CLI flags.
type RegistryOptions struct {
	WithAliasOnly        bool // --grok-with-alias-only
	IgnoreDefaultPatterns bool // --grok-ignore-default-patterns
	PatternsFile          string
	ExtraPatterns         []string // "NAME pattern"
}

func NewRegistry(opts RegistryOptions) (*Registry, error) {
	g, err := grok.NewWithConfig(&grok.Config{
		NamedCapturesOnly:   opts.WithAliasOnly,
		SkipDefaultPatterns: opts.IgnoreDefaultPatterns,
	})
	if err != nil {
		return nil, errs.Wrap(errs.PatternCompileError, "initializing grok engine", err)
	}
	r := &Registry{g: g}

	if opts.PatternsFile != "" {
		if err := r.g.AddPatternsFromFile(opts.PatternsFile); err != nil {
			return nil, errs.Wrap(errs.PatternCompileError, fmt.Sprintf("loading patterns file %q", opts.PatternsFile), err)
		}
	}
	for _, p := range opts.ExtraPatterns {
		name, pattern, err := splitNamedPattern(p)
		if err != nil {
			return nil, errs.Wrap(errs.PatternCompileError, fmt.Sprintf("extra pattern %q", p), err)
		}
		if err := r.g.AddPattern(name, pattern); err != nil {
			return nil, errs.Wrap(errs.PatternCompileError, fmt.Sprintf("adding pattern %q", name), err)
		}
	}
	return r, nil
}

// splitNamedPattern parses the "NAME pattern" syntax used by both
// --grok-extra-patterns and grok's own pattern-file lines.
func splitNamedPattern(s string) (name, pattern string, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), " ", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected \"NAME pattern\", got %q", s)
	}
	return parts[0], parts[1], nil
}

// Compile resolves a grok expression (e.g. "%{SYSLOGLINE}") into a
// ready-to-match expression and validates it at build time by
// attempting a trivial match against an empty string. The expression
// is used as given: a bare pattern name without "%{...}" is matched as
// literal text, not looked up.
func (r *Registry) Compile(patternExpr string) (*CompiledPattern, error) {
	if _, err := r.g.Parse(patternExpr, ""); err != nil {
		return nil, errs.Wrap(errs.PatternCompileError, fmt.Sprintf("compiling pattern %q", patternExpr), err)
	}
	return &CompiledPattern{g: r.g, expr: patternExpr}, nil
}

// DefaultPatterns returns the bundled pattern table for
// --grok-list-default-patterns.
func (r *Registry) DefaultPatterns() map[string]string {
	return r.g.Patterns
}

// CompiledPattern is an immutable, shared-by-value-identity compiled
// grok expression; cheap to clone across pipeline stages because it is
// only ever read.
type CompiledPattern struct {
	g    *grok.Grok
	expr string
}

// Match runs the compiled pattern against raw text, returning the named
// captures (capture name -> matched text).
func (c *CompiledPattern) Match(raw string) (map[string]string, error) {
	return c.g.Parse(c.expr, raw)
}
