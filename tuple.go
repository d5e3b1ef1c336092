package dataspec

import (
	"iter"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/reoring/dataspec/i18n"
)

// tupleNode validates fixed-arity ordered values, position by position.
// record is non-nil when conform should emit a named record instead of a
// positional Tuple; it is decided once at construction and never recomputed
// by WithTag copies.
type tupleNode struct {
	specs  []Spec
	record reflect.Type
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

func buildTuple(desc Tuple, o buildOpts) (Spec, error) {
	specs := make([]Spec, len(desc))
	for i, d := range desc {
		child, err := Build(d)
		if err != nil {
			return Spec{}, err
		}
		specs[i] = child
	}
	t, def := "tuple", true
	if o.tagSet {
		t, def = o.tag, false
	}
	return newSpec(t, def, tupleNode{specs: specs, record: recordType(o, specs)}), nil
}

// recordType derives a named-record struct type from the position tags when
// the tuple itself carries an explicit tag and every position carries a
// distinct, non-default tag. The positional contract stays intact either way.
func recordType(o buildOpts, specs []Spec) reflect.Type {
	if !o.tagSet || len(specs) == 0 {
		return nil
	}
	fields := make([]reflect.StructField, len(specs))
	seen := map[string]bool{}
	for i, s := range specs {
		if s.defaultTag {
			return nil
		}
		name := fieldName(s.Tag())
		if name == "" || seen[name] {
			return nil
		}
		seen[name] = true
		fields[i] = reflect.StructField{Name: name, Type: anyType}
	}
	return reflect.StructOf(fields)
}

// fieldName sanitizes a tag into an exported Go identifier, or returns ""
// when nothing usable remains.
func fieldName(tag string) string {
	var b strings.Builder
	for _, r := range tag {
		switch {
		case unicode.IsLetter(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if b.Len() == 0 {
				continue
			}
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '|':
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" || name == strings.Repeat("_", len(name)) {
		return ""
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func (n tupleNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		rv := reflect.ValueOf(v)
		if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			yield(ErrorDetails{
				Message: i18n.T("not_a_tuple", nil),
				Pred:    tag,
				Value:   v,
				Via:     []string{tag},
			})
			return
		}
		if rv.Len() != len(n.specs) {
			yield(ErrorDetails{
				Message: i18n.T("length_mismatch", map[string]string{
					"want": strconv.Itoa(len(n.specs)),
					"got":  strconv.Itoa(rv.Len()),
				}),
				Pred:  tag,
				Value: rv.Len(),
				Via:   []string{tag},
			})
			return
		}
		for i, s := range n.specs {
			if !forward(yield, enrichAt(tag, i, s.Validate(rv.Index(i).Interface()))) {
				return
			}
		}
	}
}

func (n tupleNode) conform(v any) Conformed {
	rv := reflect.ValueOf(v)
	conformed := make([]any, len(n.specs))
	for i, s := range n.specs {
		cv := s.ConformValid(rv.Index(i).Interface())
		if !cv.Valid() {
			return Invalid()
		}
		conformed[i] = cv.Value()
	}
	if n.record != nil {
		out := reflect.New(n.record).Elem()
		for i, cv := range conformed {
			if cv != nil {
				out.Field(i).Set(reflect.ValueOf(cv))
			}
		}
		return ConformedValue(out.Interface())
	}
	return ConformedValue(Tuple(conformed))
}
