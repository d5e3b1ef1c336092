package dataspec

import (
	"fmt"
	"iter"
	"reflect"
	"regexp"
	"strconv"
	"time"

	"github.com/reoring/dataspec/i18n"
)

// validatorSpec wires a list of ValidatorFns into one node. Validation runs
// them in order and stops forwarding once the consumer stops pulling.
type validatorSpec struct {
	fns []ValidatorFn
}

func (n validatorSpec) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		for _, fn := range n.fns {
			for _, e := range fn(v) {
				e = e.prepend(tag)
				if e.Pred == "" {
					e.Pred = tag
				}
				if !yield(e) {
					return
				}
			}
		}
	}
}

func (validatorSpec) conform(v any) Conformed { return ConformedValue(v) }

func factorySpec(tag string, o buildOpts, fns ...ValidatorFn) Spec {
	def := true
	if o.tagSet {
		tag, def = o.tag, false
	}
	s := newSpec(tag, def, validatorSpec{fns: fns})
	if o.conformer != nil {
		s = s.ComposeConformer(o.conformer)
	}
	return s
}

// singleError wraps one ErrorDetails in a validator result slice.
func singleError(code, pred string, v any, data map[string]string) []ErrorDetails {
	return []ErrorDetails{{
		Message: i18n.T(code, data),
		Pred:    pred,
		Value:   v,
	}}
}

// StrOpts controls the string spec factory. Exactly one of Pattern, Format,
// ConformFormat may be set. Formats defaults to DefaultFormats when a format
// name is given.
type StrOpts struct {
	Length        *int
	MinLength     *int
	MaxLength     *int
	Pattern       string
	Format        string
	ConformFormat string
	Formats       *FormatRegistry
}

// DefaultFormats is the registry consulted by Str when StrOpts.Formats is
// nil. It starts empty; callers register formats or install a prepopulated
// registry.
var DefaultFormats = NewFormatRegistry()

// Str builds a string spec with optional length, pattern and named-format
// constraints.
func Str(o StrOpts, opts ...Option) (Spec, error) {
	if err := checkStrOpts(o); err != nil {
		return Spec{}, err
	}
	fns := []ValidatorFn{func(v any) []ErrorDetails {
		if _, ok := v.(string); !ok {
			return singleError("not_a_string", "is-str", v, map[string]string{"value": fmt.Sprint(v)})
		}
		return nil
	}}
	if o.Length != nil {
		want := *o.Length
		fns = append(fns, strValidator(func(s string) []ErrorDetails {
			if len(s) != want {
				return singleError("str_length", "str-length", s, map[string]string{
					"got": strconv.Itoa(len(s)), "length": strconv.Itoa(want),
				})
			}
			return nil
		}))
	}
	if o.MinLength != nil {
		min := *o.MinLength
		fns = append(fns, strValidator(func(s string) []ErrorDetails {
			if len(s) < min {
				return singleError("str_too_short", "str-min-length", s, map[string]string{
					"value": s, "min": strconv.Itoa(min),
				})
			}
			return nil
		}))
	}
	if o.MaxLength != nil {
		max := *o.MaxLength
		fns = append(fns, strValidator(func(s string) []ErrorDetails {
			if len(s) > max {
				return singleError("str_too_long", "str-max-length", s, map[string]string{
					"value": s, "max": strconv.Itoa(max),
				})
			}
			return nil
		}))
	}
	bopts := applyOpts(opts)
	switch {
	case o.Pattern != "":
		re, err := regexp.Compile(o.Pattern)
		if err != nil {
			return Spec{}, fmt.Errorf("dataspec: invalid string pattern: %w", err)
		}
		fns = append(fns, strValidator(func(s string) []ErrorDetails {
			if !re.MatchString(s) {
				return singleError("pattern_mismatch", "str-pattern", s, map[string]string{
					"value": s, "pattern": o.Pattern,
				})
			}
			return nil
		}))
	case o.Format != "" || o.ConformFormat != "":
		name := o.Format
		conforming := false
		if name == "" {
			name, conforming = o.ConformFormat, true
		}
		reg := o.Formats
		if reg == nil {
			reg = DefaultFormats
		}
		format, ok := reg.Lookup(name)
		if !ok {
			return Spec{}, fmt.Errorf("dataspec: unknown string format %q", name)
		}
		fns = append(fns, strValidator(func(s string) []ErrorDetails {
			return format.Validate(s)
		}))
		if conforming && format.Conformer != nil {
			// Format conformer runs before any caller-supplied one.
			bopts.conformer = composeConformers(format.Conformer, bopts.conformer)
		}
	}
	return factorySpec("str", bopts, fns...), nil
}

func checkStrOpts(o StrOpts) error {
	for _, p := range []*int{o.Length, o.MinLength, o.MaxLength} {
		if p != nil && *p < 0 {
			return fmt.Errorf("dataspec: string lengths must be non-negative")
		}
	}
	if o.Length != nil && (o.MinLength != nil || o.MaxLength != nil) {
		return fmt.Errorf("dataspec: cannot combine Length with MinLength or MaxLength")
	}
	if o.MinLength != nil && o.MaxLength != nil && *o.MinLength > *o.MaxLength {
		return fmt.Errorf("dataspec: MinLength cannot exceed MaxLength")
	}
	set := 0
	for _, s := range []string{o.Pattern, o.Format, o.ConformFormat} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("dataspec: Pattern, Format and ConformFormat are mutually exclusive")
	}
	return nil
}

// strValidator lifts a string-typed validator; non-string inputs are skipped
// because the type check already reported them.
func strValidator(fn func(s string) []ErrorDetails) ValidatorFn {
	return func(v any) []ErrorDetails {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		return fn(s)
	}
}

func composeConformers(inner, outer Conformer) Conformer {
	if outer == nil {
		return inner
	}
	return func(v any) Conformed {
		c := inner(v)
		if !c.Valid() {
			return c
		}
		return outer(c.Value())
	}
}

// NumKind narrows the numeric types a Num spec accepts.
type NumKind int

const (
	NumAny NumKind = iota
	NumInt
	NumFloat
)

// NumOpts controls the numeric spec factory. Min and Max are inclusive.
type NumOpts struct {
	Kind NumKind
	Min  *float64
	Max  *float64
}

// Num builds a numeric spec over Go's integer and float types.
func Num(o NumOpts, opts ...Option) (Spec, error) {
	if o.Min != nil && o.Max != nil && *o.Min > *o.Max {
		return Spec{}, fmt.Errorf("dataspec: Min cannot exceed Max")
	}
	fns := []ValidatorFn{func(v any) []ErrorDetails {
		if _, ok := asNumber(v, o.Kind); !ok {
			return singleError("not_a_number", numPred(o.Kind), v, map[string]string{"value": fmt.Sprint(v)})
		}
		return nil
	}}
	if o.Min != nil {
		min := *o.Min
		fns = append(fns, numValidator(o.Kind, func(f float64, v any) []ErrorDetails {
			if f < min {
				return singleError("num_too_small", "num-min", v, map[string]string{
					"value": fmt.Sprint(v), "min": fmt.Sprint(min),
				})
			}
			return nil
		}))
	}
	if o.Max != nil {
		max := *o.Max
		fns = append(fns, numValidator(o.Kind, func(f float64, v any) []ErrorDetails {
			if f > max {
				return singleError("num_too_big", "num-max", v, map[string]string{
					"value": fmt.Sprint(v), "max": fmt.Sprint(max),
				})
			}
			return nil
		}))
	}
	return factorySpec("num", applyOpts(opts), fns...), nil
}

func numPred(k NumKind) string {
	switch k {
	case NumInt:
		return "is-int"
	case NumFloat:
		return "is-float"
	}
	return "is-num"
}

// asNumber reports whether v is a number of the requested kind and returns
// its float rendering for bound checks. Booleans are not numbers.
func asNumber(v any, kind NumKind) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if kind == NumFloat {
			return 0, false
		}
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if kind == NumFloat {
			return 0, false
		}
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		if kind == NumInt {
			return 0, false
		}
		return rv.Float(), true
	}
	return 0, false
}

func numValidator(kind NumKind, fn func(f float64, v any) []ErrorDetails) ValidatorFn {
	return func(v any) []ErrorDetails {
		f, ok := asNumber(v, kind)
		if !ok {
			return nil
		}
		return fn(f, v)
	}
}

// BoolOpts controls the boolean spec factory. An empty Allowed list permits
// both values.
type BoolOpts struct {
	Allowed []bool
}

// Bool builds a boolean spec, optionally restricted to specific values.
func Bool(o BoolOpts, opts ...Option) (Spec, error) {
	fns := []ValidatorFn{func(v any) []ErrorDetails {
		if _, ok := v.(bool); !ok {
			return singleError("not_a_bool", "is-bool", v, map[string]string{"value": fmt.Sprint(v)})
		}
		return nil
	}}
	if len(o.Allowed) > 0 {
		allowed := append([]bool(nil), o.Allowed...)
		fns = append(fns, func(v any) []ErrorDetails {
			b, ok := v.(bool)
			if !ok {
				return nil
			}
			for _, a := range allowed {
				if a == b {
					return nil
				}
			}
			return singleError("bool_not_allowed", "bool-allowed", v, map[string]string{"value": fmt.Sprint(v)})
		})
	}
	return factorySpec("bool", applyOpts(opts), fns...), nil
}

// BytesOpts controls the byte-slice spec factory.
type BytesOpts struct {
	MinLength *int
	MaxLength *int
}

// Bytes builds a spec over []byte values with optional length bounds.
func Bytes(o BytesOpts, opts ...Option) (Spec, error) {
	for _, p := range []*int{o.MinLength, o.MaxLength} {
		if p != nil && *p < 0 {
			return Spec{}, fmt.Errorf("dataspec: byte lengths must be non-negative")
		}
	}
	if o.MinLength != nil && o.MaxLength != nil && *o.MinLength > *o.MaxLength {
		return Spec{}, fmt.Errorf("dataspec: MinLength cannot exceed MaxLength")
	}
	fns := []ValidatorFn{func(v any) []ErrorDetails {
		if _, ok := v.([]byte); !ok {
			return singleError("not_bytes", "is-bytes", v, map[string]string{"value": fmt.Sprint(v)})
		}
		return nil
	}}
	if o.MinLength != nil {
		min := *o.MinLength
		fns = append(fns, bytesValidator(func(b []byte) []ErrorDetails {
			if len(b) < min {
				return singleError("bytes_too_short", "bytes-min-length", b, map[string]string{"min": strconv.Itoa(min)})
			}
			return nil
		}))
	}
	if o.MaxLength != nil {
		max := *o.MaxLength
		fns = append(fns, bytesValidator(func(b []byte) []ErrorDetails {
			if len(b) > max {
				return singleError("bytes_too_long", "bytes-max-length", b, map[string]string{"max": strconv.Itoa(max)})
			}
			return nil
		}))
	}
	return factorySpec("bytes", applyOpts(opts), fns...), nil
}

func bytesValidator(fn func(b []byte) []ErrorDetails) ValidatorFn {
	return func(v any) []ErrorDetails {
		b, ok := v.([]byte)
		if !ok {
			return nil
		}
		return fn(b)
	}
}

// InstOpts controls the time-instant spec factory. Bounds are exclusive.
type InstOpts struct {
	Before *time.Time
	After  *time.Time
}

// Inst builds a spec over time.Time values with optional ordering bounds.
func Inst(o InstOpts, opts ...Option) (Spec, error) {
	if o.Before != nil && o.After != nil && !o.After.Before(*o.Before) {
		return Spec{}, fmt.Errorf("dataspec: After bound must precede Before bound")
	}
	fns := []ValidatorFn{func(v any) []ErrorDetails {
		if _, ok := v.(time.Time); !ok {
			return singleError("not_an_instant", "is-inst", v, map[string]string{"value": fmt.Sprint(v)})
		}
		return nil
	}}
	if o.Before != nil {
		bound := *o.Before
		fns = append(fns, instValidator(func(t time.Time) []ErrorDetails {
			if !t.Before(bound) {
				return singleError("inst_not_before", "inst-before", t, map[string]string{
					"value": t.Format(time.RFC3339), "bound": bound.Format(time.RFC3339),
				})
			}
			return nil
		}))
	}
	if o.After != nil {
		bound := *o.After
		fns = append(fns, instValidator(func(t time.Time) []ErrorDetails {
			if !t.After(bound) {
				return singleError("inst_not_after", "inst-after", t, map[string]string{
					"value": t.Format(time.RFC3339), "bound": bound.Format(time.RFC3339),
				})
			}
			return nil
		}))
	}
	return factorySpec("inst", applyOpts(opts), fns...), nil
}

func instValidator(fn func(t time.Time) []ErrorDetails) ValidatorFn {
	return func(v any) []ErrorDetails {
		t, ok := v.(time.Time)
		if !ok {
			return nil
		}
		return fn(t)
	}
}

// everyNode accepts anything, including nil.
type everyNode struct{}

func (everyNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {}
}

func (everyNode) conform(v any) Conformed { return ConformedValue(v) }

// Every builds a spec that accepts every value.
func Every(opts ...Option) Spec {
	o := applyOpts(opts)
	t, def := "every", true
	if o.tagSet {
		t, def = o.tag, false
	}
	s := newSpec(t, def, everyNode{})
	if o.conformer != nil {
		s = s.ComposeConformer(o.conformer)
	}
	return s
}

// Nilable builds a spec that accepts nil in addition to whatever desc
// accepts. Nil conforms to itself.
func Nilable(desc any, opts ...Option) (Spec, error) {
	inner, err := Build(desc)
	if err != nil {
		return Spec{}, err
	}
	o := applyOpts(opts)
	t, def := "nilable", true
	if o.tagSet {
		t, def = o.tag, false
	}
	s := newSpec(t, def, nilableNode{inner: inner})
	if o.conformer != nil {
		s = s.ComposeConformer(o.conformer)
	}
	return s, nil
}

type nilableNode struct {
	inner Spec
}

func (n nilableNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		if v == nil {
			return
		}
		forward(yield, enrich(tag, n.inner.Validate(v)))
	}
}

func (n nilableNode) conform(v any) Conformed {
	if v == nil {
		return ConformedValue(nil)
	}
	return n.inner.ConformValid(v)
}

// objNode validates struct values field by field against named child specs.
type objNode struct {
	fields []keySpec
}

// Obj builds a spec over struct values. Field names map to specs for the
// corresponding exported fields; Opt marks a field that may be absent from
// the struct type entirely.
func Obj(fields map[any]any, opts ...Option) (Spec, error) {
	o := applyOpts(opts)
	keys, err := buildKeySpecs(fields)
	if err != nil {
		return Spec{}, err
	}
	for _, ks := range keys {
		if _, ok := ks.key.(string); !ok {
			return Spec{}, fmt.Errorf("dataspec: object field names must be strings, got %T", ks.key)
		}
	}
	t, def := "obj", true
	if o.tagSet {
		t, def = o.tag, false
	}
	s := newSpec(t, def, objNode{fields: keys})
	if o.conformer != nil {
		s = s.ComposeConformer(o.conformer)
	}
	return s, nil
}

func (n objNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && !rv.IsNil() {
			rv = rv.Elem()
		}
		if v == nil || rv.Kind() != reflect.Struct {
			yield(ErrorDetails{
				Message: i18n.T("not_a_struct", map[string]string{"value": fmt.Sprint(v)}),
				Pred:    tag,
				Value:   v,
				Via:     []string{tag},
			})
			return
		}
		for _, ks := range n.fields {
			name := ks.key.(string)
			fv := rv.FieldByName(name)
			if !fv.IsValid() {
				if ks.optional {
					continue
				}
				if !yield(ErrorDetails{
					Message: i18n.T("missing_field", map[string]string{"field": name}),
					Pred:    ks.spec.Tag(),
					Value:   v,
					Via:     []string{tag},
					Path:    []any{name},
				}) {
					return
				}
				continue
			}
			if !forward(yield, enrichAt(tag, name, ks.spec.Validate(fv.Interface()))) {
				return
			}
		}
	}
}

// Struct values conform to themselves; field conformers do not rewrite the
// original struct.
func (objNode) conform(v any) Conformed { return ConformedValue(v) }

// Prebaked specs for common checks.
var (
	IsStr   = MustBuild(PredicateFn(isStr), Tag("is-str"))
	IsNum   = MustBuild(PredicateFn(isNum), Tag("is-num"))
	IsInt   = MustBuild(PredicateFn(isInt), Tag("is-int"))
	IsFloat = MustBuild(PredicateFn(isFloat), Tag("is-float"))
	IsBool  = MustBuild(PredicateFn(isBool), Tag("is-bool"))
	IsTrue  = MustBuild(PredicateFn(isTrue), Tag("is-true"))
	IsFalse = MustBuild(PredicateFn(isFalse), Tag("is-false"))
	IsNil   = MustBuild(nil, Tag("is-nil"))
	IsAny   = Every(Tag("is-any"))
)

func isStr(v any) bool { _, ok := v.(string); return ok }

func isNum(v any) bool { _, ok := asNumber(v, NumAny); return ok }

func isInt(v any) bool { _, ok := asNumber(v, NumInt); return ok }

func isFloat(v any) bool { _, ok := asNumber(v, NumFloat); return ok }

func isBool(v any) bool { _, ok := v.(bool); return ok }

func isTrue(v any) bool { b, ok := v.(bool); return ok && b }

func isFalse(v any) bool { b, ok := v.(bool); return ok && !b }
