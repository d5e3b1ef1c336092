package dataspec

import (
	"fmt"
	"iter"

	"github.com/reoring/dataspec/i18n"
)

// allNode threads a value through its children in order: each child must
// validate the output of the previous child's conformer. The first failing
// child stops the chain.
type allNode struct {
	specs []Spec
}

// All builds the conjunction of the given specs. Validation feeds each
// spec the conformed output of the one before it, so later specs may assume
// earlier normalization has already happened.
func All(descs ...any) (Spec, error) {
	if len(descs) == 0 {
		return Spec{}, fmt.Errorf("dataspec: All requires at least one spec")
	}
	specs := make([]Spec, len(descs))
	for i, d := range descs {
		s, err := Build(d)
		if err != nil {
			return Spec{}, err
		}
		specs[i] = s
	}
	if len(specs) == 1 {
		return specs[0], nil
	}
	return newSpec("all", true, allNode{specs: specs}), nil
}

// MustAll is All that panics on a construction error.
func MustAll(descs ...any) Spec {
	s, err := All(descs...)
	if err != nil {
		panic(err)
	}
	return s
}

func (n allNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		cur := v
		for _, s := range n.specs {
			errs := s.ValidateAll(cur)
			if len(errs) > 0 {
				for _, e := range errs {
					if !yield(e.prepend(tag)) {
						return
					}
				}
				return
			}
			cv := s.ConformValid(cur)
			if !cv.Valid() {
				yield(ErrorDetails{
					Message: i18n.T("conform_break", map[string]string{"tag": s.Tag()}),
					Pred:    s.Tag(),
					Value:   cur,
					Via:     []string{tag},
				})
				return
			}
			cur = cv.Value()
		}
	}
}

func (n allNode) conform(v any) Conformed {
	cur := v
	for _, s := range n.specs {
		cv := s.ConformValid(cur)
		if !cv.Valid() {
			return Invalid()
		}
		cur = cv.Value()
	}
	return ConformedValue(cur)
}

// anyNode accepts a value as soon as one child accepts it. All children see
// the same input; there is no chaining.
type anyNode struct {
	specs []Spec
}

// Any builds the disjunction of the given specs. A value is valid when at
// least one spec accepts it; diagnostics are reported only when every spec
// rejects it, and then include every spec's errors.
func Any(descs ...any) (Spec, error) {
	if len(descs) == 0 {
		return Spec{}, fmt.Errorf("dataspec: Any requires at least one spec")
	}
	specs := make([]Spec, len(descs))
	for i, d := range descs {
		s, err := Build(d)
		if err != nil {
			return Spec{}, err
		}
		specs[i] = s
	}
	if len(specs) == 1 {
		return specs[0], nil
	}
	return newSpec("any", true, anyNode{specs: specs}), nil
}

// MustAny is Any that panics on a construction error.
func MustAny(descs ...any) Spec {
	s, err := Any(descs...)
	if err != nil {
		panic(err)
	}
	return s
}

func (n anyNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		var all []ErrorDetails
		for _, s := range n.specs {
			errs := s.ValidateAll(v)
			if len(errs) == 0 {
				return
			}
			all = append(all, errs...)
		}
		for _, e := range all {
			if !yield(e.prepend(tag)) {
				return
			}
		}
	}
}

func (n anyNode) conform(v any) Conformed {
	for _, s := range n.specs {
		if s.IsValid(v) {
			return s.ConformValid(v)
		}
	}
	return Invalid()
}
