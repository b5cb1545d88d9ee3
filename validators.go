package formskema

import (
	"fmt"
	"regexp"

	"github.com/oarkflow/expr"

	"github.com/reoring/formskema/i18n"
)

// Validator is a rule applied to a single value after structural coercion.
// record is the whole submitted record the value belongs to, available for
// cross-field rules.
type Validator interface {
	Validate(value any, record *Record) error
}

// RuleFactory builds a Validator for a field from its rule definition.
type RuleFactory func(f *Field, def RuleDefinition) (Validator, error)

// Built-in rule names.
const (
	RuleRequired   = "required"
	RuleRegexp     = "regexp"
	RuleExpression = "expression"
)

func builtinRules() map[string]RuleFactory {
	return map[string]RuleFactory{
		RuleRequired:   newRequiredRule,
		RuleRegexp:     newRegexpRule,
		RuleExpression: newExpressionRule,
	}
}

// ruleMessage is a rule's failure text: the configured invalidMsg, or the
// translated default looked up when the rule fails.
type ruleMessage struct {
	custom string
	key    string
}

func message(def RuleDefinition, key string) ruleMessage {
	return ruleMessage{custom: def.InvalidMsg, key: key}
}

func (m ruleMessage) String() string {
	if m.custom != "" {
		return m.custom
	}
	return i18n.T(m.key, nil)
}

type requiredRule struct {
	msg ruleMessage
}

func newRequiredRule(_ *Field, def RuleDefinition) (Validator, error) {
	return requiredRule{msg: message(def, i18n.Required)}, nil
}

func (r requiredRule) Validate(value any, _ *Record) error {
	if value == nil || value == "" {
		return Issue{Code: CodeRequired, Message: r.msg.String(), Rule: RuleRequired}
	}
	return nil
}

// regexpRule matches at the start of the value only, like a prefix match.
type regexpRule struct {
	re  *regexp.Regexp
	msg ruleMessage
}

func newRegexpRule(f *Field, def RuleDefinition) (Validator, error) {
	pattern := ".*"
	if p, ok := def.Extra["regexp"]; ok {
		s, ok := p.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field %q: regexp must be a string, got %T", ErrInvalidRule, f.id, p)
		}
		pattern = s
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidRule, f.id, err)
	}
	return regexpRule{re: re, msg: message(def, i18n.Pattern)}, nil
}

func (r regexpRule) Validate(value any, _ *Record) error {
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprint(value)
	}
	if !r.re.MatchString(s) {
		return Issue{Code: CodePattern, Message: r.msg.String(), Rule: RuleRegexp}
	}
	return nil
}

// expressionRule evaluates extra.expression against the submitted record with
// the field value exposed as "value". Anything but true fails.
type expressionRule struct {
	source string
	msg    ruleMessage
}

func newExpressionRule(f *Field, def RuleDefinition) (Validator, error) {
	src, _ := def.Extra["expression"].(string)
	if src == "" {
		return nil, fmt.Errorf("%w: field %q: expression is required", ErrInvalidRule, f.id)
	}
	if _, err := expr.Parse(src); err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidRule, f.id, err)
	}
	return expressionRule{source: src, msg: message(def, i18n.Expression)}, nil
}

func (r expressionRule) Validate(value any, record *Record) error {
	env := record.Map()
	if env == nil {
		env = map[string]any{}
	}
	env["value"] = plain(value)
	out, err := expr.Eval(r.source, env)
	if ok, _ := out.(bool); err != nil || !ok {
		return Issue{Code: CodeBusinessRule, Message: r.msg.String(), Rule: RuleExpression}
	}
	return nil
}
