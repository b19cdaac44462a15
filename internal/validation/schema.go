package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RuleKind names a supported constraint.
type RuleKind string

const (
	KindRequired    RuleKind = "required"
	KindEmail       RuleKind = "email"
	KindMinLength   RuleKind = "min_length"
	KindEqualsField RuleKind = "equals_field"
)

// Rule is a single field constraint with the message shown when it fails.
type Rule struct {
	Kind    RuleKind
	Message string
	Min     int
	Other   string
}

func Required(message string) Rule {
	return Rule{Kind: KindRequired, Message: message}
}

func Email(message string) Rule {
	return Rule{Kind: KindEmail, Message: message}
}

func MinLength(n int, message string) Rule {
	return Rule{Kind: KindMinLength, Message: message, Min: n}
}

// EqualsField requires the value to match another field of the same submission.
func EqualsField(other, message string) Rule {
	return Rule{Kind: KindEqualsField, Message: message, Other: other}
}

type fieldRules struct {
	name  string
	rules []Rule
}

// SchemaBuilder collects field declarations in order.
type SchemaBuilder struct {
	fields []fieldRules
}

func NewSchema() *SchemaBuilder {
	return &SchemaBuilder{}
}

func (b *SchemaBuilder) Field(name string, rules ...Rule) *SchemaBuilder {
	b.fields = append(b.fields, fieldRules{name: name, rules: rules})
	return b
}

// Build checks the declarations and compiles them into an immutable RuleSet.
func (b *SchemaBuilder) Build() (*RuleSet, error) {
	var errs []error
	seen := make(map[string]bool, len(b.fields))

	fields := make([]fieldRules, 0, len(b.fields))
	for _, f := range b.fields {
		if strings.TrimSpace(f.name) == "" {
			errs = append(errs, errors.New("field name is required"))
			continue
		}
		if seen[f.name] {
			errs = append(errs, fmt.Errorf("field %q declared twice", f.name))
			continue
		}
		seen[f.name] = true

		for _, r := range f.rules {
			if err := checkRule(f.name, r); err != nil {
				errs = append(errs, err)
			}
		}

		rules := make([]Rule, len(f.rules))
		copy(rules, f.rules)
		fields = append(fields, fieldRules{name: f.name, rules: rules})
	}

	for _, f := range fields {
		for _, r := range f.rules {
			if r.Kind == KindEqualsField && r.Other != "" && r.Other != f.name && !seen[r.Other] {
				errs = append(errs, fmt.Errorf("field %q: equals-field rule references undeclared field %q", f.name, r.Other))
			}
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid schema: %w", errors.Join(errs...))
	}

	return &RuleSet{
		fields: fields,
		engine: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// MustBuild is Build for package-level schemas that are known to be valid.
func (b *SchemaBuilder) MustBuild() *RuleSet {
	rs, err := b.Build()
	if err != nil {
		panic(err)
	}
	return rs
}

func checkRule(field string, r Rule) error {
	switch r.Kind {
	case KindRequired, KindEmail:
		return nil
	case KindMinLength:
		if r.Min <= 0 {
			return fmt.Errorf("field %q: min length must be positive, got %d", field, r.Min)
		}
		return nil
	case KindEqualsField:
		if r.Other == "" {
			return fmt.Errorf("field %q: equals-field rule needs another field name", field)
		}
		if r.Other == field {
			return fmt.Errorf("field %q: equals-field rule cannot reference itself", field)
		}
		return nil
	default:
		return fmt.Errorf("field %q: unknown rule kind %q", field, r.Kind)
	}
}

// RuleSet is a compiled, read-only collection of field constraints. It is safe
// for concurrent use.
type RuleSet struct {
	fields []fieldRules
	engine *validator.Validate
}

// Fields returns the declared field names in declaration order.
func (rs *RuleSet) Fields() []string {
	names := make([]string, len(rs.fields))
	for i, f := range rs.fields {
		names[i] = f.name
	}
	return names
}

// Validate evaluates every rule of every field against sub. It never stops at
// the first violation.
func (rs *RuleSet) Validate(sub Submission) Result {
	var failure Failure

	for _, f := range rs.fields {
		value := sub.Get(f.name)
		for _, r := range f.rules {
			if code, failed := rs.check(r, value, sub); failed {
				failure = append(failure, ValidationError{
					Field:   f.name,
					Code:    code,
					Message: r.Message,
				})
			}
		}
	}

	if len(failure) > 0 {
		return Result{Status: StatusInvalid, Submission: sub, Failure: failure}
	}
	return Result{Status: StatusValid, Submission: sub}
}

func (rs *RuleSet) check(r Rule, value string, sub Submission) (ValidationErrorCode, bool) {
	switch r.Kind {
	case KindRequired:
		return CodeRequired, rs.engine.Var(value, "required") != nil

	case KindEmail:
		if value == "" {
			return "", false
		}
		return CodeInvalidEmail, rs.engine.Var(value, "email") != nil

	case KindMinLength:
		if value == "" {
			return "", false
		}
		return CodeTooShort, rs.engine.Var(value, "min="+strconv.Itoa(r.Min)) != nil

	case KindEqualsField:
		return CodeMismatch, rs.engine.VarWithValue(value, sub.Get(r.Other), "eqfield") != nil
	}

	return "", false
}
