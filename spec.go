package dataspec

import (
	"iter"
)

// node is the closed set of evaluation behaviors backing a Spec. Validation
// receives the owning Spec's current tag so that WithTag copies keep
// reporting under their own name; conform implements the node's default
// conformation for already-validated values.
type node interface {
	validate(tag string, v any) iter.Seq[ErrorDetails]
	conform(v any) Conformed
}

// Spec is an immutable, composable specification node able to validate a
// value and conform it into a canonical representation. Specs are created by
// Build or by the package factories, never mutated in place, and may be
// shared freely across goroutines.
type Spec struct {
	tag        string
	defaultTag bool
	conf       Conformer
	node       node
}

func newSpec(tag string, def bool, n node) Spec {
	return Spec{tag: tag, defaultTag: def, node: n}
}

// Tag returns the label identifying this Spec in diagnostics.
func (s Spec) Tag() string { return s.tag }

// Validate lazily produces the Spec failures for v. The returned sequence is
// finite and restartable: ranging over it twice yields identical results, and
// no iteration state is retained on the Spec.
func (s Spec) Validate(v any) iter.Seq[ErrorDetails] {
	return s.node.validate(s.tag, v)
}

// ValidateAll collects every failure for v. An empty slice means v is valid.
func (s Spec) ValidateAll(v any) []ErrorDetails {
	var out []ErrorDetails
	for e := range s.Validate(v) {
		out = append(out, e)
	}
	return out
}

// ValidateEx returns a *ValidationError carrying every collected failure, or
// nil when v is valid.
func (s Spec) ValidateEx(v any) error {
	errs := s.ValidateAll(v)
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// IsValid reports whether the diagnostic sequence for v is empty. Evaluation
// stops at the first failure.
func (s Spec) IsValid(v any) bool {
	valid := true
	s.Validate(v)(func(ErrorDetails) bool {
		valid = false
		return false
	})
	return valid
}

// Conform validates v and, when valid, returns its conformed value. Invalid
// values yield the invalid marker. Faults raised by custom conformers
// propagate to the caller; they indicate a conformer defect rather than bad
// input.
func (s Spec) Conform(v any) Conformed {
	if !s.IsValid(v) {
		return Invalid()
	}
	return s.ConformValid(v)
}

// ConformValid conforms v without validating it first. Callers invoking it
// directly accept responsibility for passing only already-valid values.
func (s Spec) ConformValid(v any) Conformed {
	if s.conf != nil {
		return s.conf(v)
	}
	return s.node.conform(v)
}

// WithTag returns a copy of the Spec carrying the new tag.
func (s Spec) WithTag(tag string) Spec {
	s.tag = tag
	s.defaultTag = false
	return s
}

// WithConformer returns a copy of the Spec whose custom conformer is c,
// replacing any previous custom conformer. A nil c restores the Spec's
// default conformation behavior.
func (s Spec) WithConformer(c Conformer) Spec {
	s.conf = c
	return s
}

// ComposeConformer returns a copy of the Spec whose conformation applies c to
// the output of the current conformation.
func (s Spec) ComposeConformer(c Conformer) Spec {
	prev := s
	s.conf = func(v any) Conformed {
		r := prev.ConformValid(v)
		if !r.Valid() {
			return r
		}
		return c(r.Value())
	}
	return s
}

// Explain returns a *ValidationError describing every failure of v against s,
// or nil when v is valid.
func Explain(s Spec, v any) *ValidationError {
	if err := s.ValidateEx(v); err != nil {
		ve, _ := AsValidationError(err)
		return ve
	}
	return nil
}

// enrich prepends tag to the Via of every error in errs.
func enrich(tag string, errs iter.Seq[ErrorDetails]) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		errs(func(e ErrorDetails) bool {
			return yield(e.prepend(tag))
		})
	}
}

// enrichAt prepends tag to Via and loc to Path of every error in errs.
func enrichAt(tag string, loc any, errs iter.Seq[ErrorDetails]) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		errs(func(e ErrorDetails) bool {
			return yield(e.prependAt(tag, loc))
		})
	}
}

// forward yields every error of errs into yield, reporting whether iteration
// may continue.
func forward(yield func(ErrorDetails) bool, errs iter.Seq[ErrorDetails]) bool {
	ok := true
	errs(func(e ErrorDetails) bool {
		ok = yield(e)
		return ok
	})
	return ok
}
