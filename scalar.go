package dataspec

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/reoring/dataspec/i18n"
)

// predicateNode validates with a boolean check. A panic inside the predicate
// is converted into a single failure; user checks must never crash an
// evaluation.
type predicateNode struct {
	pred func(any) bool
	name string
}

func (n predicateNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		ok, fault := n.invoke(v)
		switch {
		case fault != nil:
			yield(ErrorDetails{
				Message: i18n.T("validation_panic", map[string]string{"cause": fault.Error()}),
				Pred:    n.name,
				Value:   v,
				Via:     []string{tag},
			})
		case !ok:
			yield(ErrorDetails{
				Message: i18n.T("predicate_failed", map[string]string{"value": fmt.Sprint(v), "pred": tag}),
				Pred:    n.name,
				Value:   v,
				Via:     []string{tag},
			})
		}
	}
}

func (n predicateNode) invoke(v any) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return n.pred(v), nil
}

func (predicateNode) conform(v any) Conformed { return ConformedValue(v) }

// validatorNode forwards every ErrorDetails produced by a validator function,
// appending the spec's tag to each error's via. Panics are converted into a
// single failure, like predicates.
type validatorNode struct {
	fn   func(any) []ErrorDetails
	name string
}

func (n validatorNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		errs, fault := n.invoke(v)
		if fault != nil {
			yield(ErrorDetails{
				Message: i18n.T("validation_panic", map[string]string{"cause": fault.Error()}),
				Pred:    n.name,
				Value:   v,
				Via:     []string{tag},
			})
			return
		}
		for _, e := range errs {
			if e.Pred == "" {
				e.Pred = n.name
			}
			if !yield(e.prepend(tag)) {
				return
			}
		}
	}
}

func (n validatorNode) invoke(v any) (errs []ErrorDetails, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return n.fn(v), nil
}

func (validatorNode) conform(v any) Conformed { return ConformedValue(v) }

// typeNode checks that a value is an instance of a type. A nil typ stands in
// for the nil check shorthand.
type typeNode struct {
	typ reflect.Type
}

func (n typeNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		if instanceOf(v, n.typ) {
			return
		}
		yield(ErrorDetails{
			Message: i18n.T("type_mismatch", map[string]string{"value": fmt.Sprint(v), "type": typeName(n.typ)}),
			Pred:    "is_" + typeName(n.typ),
			Value:   v,
			Via:     []string{tag},
		})
	}
}

func (typeNode) conform(v any) Conformed { return ConformedValue(v) }

func instanceOf(v any, typ reflect.Type) bool {
	if typ == nil {
		return v == nil
	}
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).AssignableTo(typ)
}

func typeName(typ reflect.Type) string {
	if typ == nil {
		return "nil"
	}
	return typ.String()
}

// setNode accepts any value equal to one of its members.
type setNode struct {
	values []any
}

func (n setNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		for _, m := range n.values {
			if equalValues(v, m) {
				return
			}
		}
		yield(ErrorDetails{
			Message: i18n.T("not_in_set", map[string]string{"value": fmt.Sprint(v), "set": fmt.Sprint(n.values)}),
			Pred:    tag,
			Value:   v,
			Via:     []string{tag},
		})
	}
}

func (setNode) conform(v any) Conformed { return ConformedValue(v) }

// enumNode accepts a member value, a member name, or the member itself, and
// conforms to the canonical member.
type enumNode struct {
	enum Enum
}

func (n enumNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		if _, ok := n.member(v); ok {
			return
		}
		yield(ErrorDetails{
			Message: i18n.T("not_in_enum", map[string]string{"value": fmt.Sprint(v), "enum": tag}),
			Pred:    tag,
			Value:   v,
			Via:     []string{tag},
		})
	}
}

func (n enumNode) member(v any) (EnumMember, bool) {
	for _, m := range n.enum.Members {
		if equalValues(v, m.Value) {
			return m, true
		}
	}
	for _, m := range n.enum.Members {
		if s, ok := v.(string); ok && s == m.Name {
			return m, true
		}
		if em, ok := v.(EnumMember); ok && em.Name == m.Name && equalValues(em.Value, m.Value) {
			return m, true
		}
	}
	return EnumMember{}, false
}

func (n enumNode) conform(v any) Conformed {
	if m, ok := n.member(v); ok {
		return ConformedValue(m)
	}
	return Invalid()
}

// equalValues compares by == for comparable operands and falls back to deep
// equality otherwise.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
