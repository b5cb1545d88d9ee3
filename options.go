package formskema

import (
	"io"
	"log/slog"
)

// BuildOption configures schema assembly. Nested group schemas inherit the
// options of their parent.
type BuildOption func(*config)

type config struct {
	logger     *slog.Logger
	rules      map[string]RuleFactory
	valueTypes map[string]Coercer
}

func newConfig(opts []BuildOption) *config {
	c := &config{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		rules:      builtinRules(),
		valueTypes: builtinValueTypes(),
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	return c
}

// WithLogger sets the logger used for assembly and validation debug output.
func WithLogger(l *slog.Logger) BuildOption {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRule registers (or replaces) a validation rule.
func WithRule(name string, f RuleFactory) BuildOption {
	return func(c *config) {
		if f != nil {
			c.rules[name] = f
		}
	}
}

// WithValueType registers (or replaces) a value type.
func WithValueType(name string, co Coercer) BuildOption {
	return func(c *config) {
		if co != nil {
			c.valueTypes[name] = co
		}
	}
}
