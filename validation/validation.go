// Package validation checks request payloads against ordered per-field rule chains.
//
// A payload is a flat map of field name to submitted value, as decoded from
// JSON, form or query input. Extra keys are ignored and a field missing from
// the payload is skipped unless its chain contains the "notblank" tag.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"TodoWebService/models"

	"github.com/go-playground/validator/v10"
)

// Rule pairs a validator tag with the message reported when it fails.
type Rule struct {
	Tag     string
	Message string
}

// Kind selects how a submitted value is coerced before its rules run.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindSecret
)

// Field is the rule chain of one payload key. Rules are evaluated in order and
// the first failing rule is reported.
type Field struct {
	Name  string
	Kind  Kind
	Rules []Rule
}

// String declares a text field.
func String(name string, rules ...Rule) Field {
	return Field{Name: name, Kind: KindString, Rules: rules}
}

// Secret declares a text field whose value is checked exactly as submitted,
// surrounding whitespace included.
func Secret(name string, rules ...Rule) Field {
	return Field{Name: name, Kind: KindSecret, Rules: rules}
}

// Number declares a numeric field. JSON numbers and numeric strings are
// coerced, anything else is passed through so a "numeric" rule can reject it.
func Number(name string, rules ...Rule) Field {
	return Field{Name: name, Kind: KindNumber, Rules: rules}
}

// Errors maps a field name to its first violation message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k, v := range e {
		keys = append(keys, k+": "+v)
	}
	return "validation failed: " + strings.Join(keys, "; ")
}

// Validator evaluates rule chains. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the custom tags used by the rule sets registered.
func New() *Validator {
	v := validator.New()
	v.RegisterValidation("taskstatus", StatusValidator)
	v.RegisterValidation("notblank", NotBlankValidator)
	return &Validator{validate: v}
}

// Validate returns nil when payload satisfies fields, or the violations otherwise.
func (v *Validator) Validate(payload map[string]any, fields []Field) Errors {
	var errs Errors
	for _, f := range fields {
		raw, present := payload[f.Name]
		if !present || raw == nil {
			if r, ok := f.requiredRule(); ok {
				if errs == nil {
					errs = Errors{}
				}
				errs[f.Name] = r.Message
			}
			continue
		}
		value := coerce(raw, f.Kind)
		for _, r := range f.Rules {
			if err := v.validate.Var(value, r.Tag); err != nil {
				if errs == nil {
					errs = Errors{}
				}
				errs[f.Name] = r.Message
				break
			}
		}
	}
	return errs
}

func (f Field) requiredRule() (Rule, bool) {
	for _, r := range f.Rules {
		if r.Tag == "notblank" {
			return r, true
		}
	}
	return Rule{}, false
}

func coerce(v any, kind Kind) any {
	switch kind {
	case KindNumber:
		return toNumber(v)
	case KindSecret:
		if s, ok := v.(string); ok {
			return s
		}
		return toString(v)
	default:
		return toString(v)
	}
}

func toNumber(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return integral(f)
		}
		return n.String()
	case float64:
		return integral(n)
	case int:
		return int64(n)
	case int64:
		return n
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return integral(f)
		}
		return n
	default:
		return fmt.Sprint(n)
	}
}

// integral turns 1.0 into int64(1) so integer-only tags accept it.
func integral(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return f
}

// toString trims surrounding whitespace: length rules see the same text the
// commands store.
func toString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

// StatusValidator accepts integral values that name a known task status.
func StatusValidator(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return models.TaskStatus(field.Int()).Valid()
	case reflect.Float32, reflect.Float64:
		f := field.Float()
		return f == math.Trunc(f) && models.TaskStatus(f).Valid()
	}
	return false
}

// NotBlankValidator rejects strings that are empty after trimming whitespace.
// Numbers, zero included, are never blank.
func NotBlankValidator(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.String {
		return strings.TrimSpace(field.String()) != ""
	}
	return field.IsValid()
}
