package dataspec

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// PredicateFn is a one-argument boolean check usable as a Build descriptor.
type PredicateFn func(v any) bool

// ValidatorFn is a one-argument check producing zero or more ErrorDetails.
// Declaring a function as a ValidatorFn (or giving it this exact signature)
// is what marks it as a validator at the call site; Build never probes
// callables beyond their static type.
type ValidatorFn func(v any) []ErrorDetails

// Set is an enumeration-of-values descriptor: a value is valid iff it equals
// one of the listed members.
type Set []any

// Tuple is a fixed-arity descriptor of heterogeneous child descriptors,
// distinct at the type level from the length-1/2 collection shape.
type Tuple []any

// EnumMember is one named member of an Enum.
type EnumMember struct {
	Name  string
	Value any
}

// Enum is an enumerated-type descriptor. A value is valid if it equals a
// member's value, a member's name, or the member itself; conforming
// normalizes to the canonical member.
type Enum struct {
	Name    string
	Members []EnumMember
}

// OptionalKey marks a mapping key as non-required. Use Opt to create one.
type OptionalKey struct {
	Key any
}

// Opt wraps a mapping key to mark it optional in mapping and object specs.
func Opt(key any) OptionalKey { return OptionalKey{Key: key} }

// TypeOf returns the reflect.Type descriptor for T. It works for interface
// types as well as concrete ones.
func TypeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// Option customizes Build and the package factories.
type Option func(*buildOpts)

type buildOpts struct {
	tag         string
	tagSet      bool
	conformer   Conformer
	conformKeys bool
}

// Tag sets the tag of the Spec under construction.
func Tag(tag string) Option {
	return func(o *buildOpts) {
		o.tag = tag
		o.tagSet = true
	}
}

// ConformWith attaches a conformer to the Spec under construction. On a
// freshly built Spec the conformer composes with the Spec's default
// conformation; on an existing Spec descriptor it replaces the custom
// conformer.
func ConformWith(c Conformer) Option {
	return func(o *buildOpts) { o.conformer = c }
}

// ConformKeys makes a key/value Spec conform keys as well as values. Only KV
// reads it; every other constructor ignores it. Off by default so that two
// distinct raw keys can never silently collide after conformation.
func ConformKeys() Option {
	return func(o *buildOpts) { o.conformKeys = true }
}

func applyOpts(opts []Option) buildOpts {
	var o buildOpts
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Build coerces a descriptor into a Spec. Recognized shapes:
//
//   - an existing Spec: returned as-is, with tag/conformer replaced when given
//   - nil: instance-of-nil check
//   - a reflect.Type: instance check (see TypeOf)
//   - func(any) bool / PredicateFn: predicate Spec
//   - ValidatorFn / func(any) []ErrorDetails: validator Spec
//   - Set, Enum: enumeration Specs
//   - []any of length 1 or 2: collection Spec; position 0 is the element
//     descriptor, position 1 an optional CollOpts record
//   - map[any]any or map[string]any: mapping Spec; wrap keys with Opt to make
//     them optional
//   - Tuple: tuple Spec with one child descriptor per position
//
// Any other shape is a construction error naming the offending descriptor.
func Build(descriptor any, opts ...Option) (Spec, error) {
	o := applyOpts(opts)

	if s, ok := descriptor.(Spec); ok {
		if o.tagSet {
			s = s.WithTag(o.tag)
		}
		if o.conformer != nil {
			s = s.WithConformer(o.conformer)
		}
		return s, nil
	}

	s, err := buildNode(descriptor, o)
	if err != nil {
		return Spec{}, err
	}
	if o.conformer != nil {
		s = s.ComposeConformer(o.conformer)
	}
	return s, nil
}

func buildNode(descriptor any, o buildOpts) (Spec, error) {
	tag := func(def string) (string, bool) {
		if o.tagSet {
			return o.tag, false
		}
		return def, true
	}

	switch d := descriptor.(type) {
	case nil:
		t, def := tag("is_nil")
		return newSpec(t, def, typeNode{}), nil
	case reflect.Type:
		t, def := tag("is_" + d.String())
		return newSpec(t, def, typeNode{typ: d}), nil
	case PredicateFn:
		return buildPredicate((func(any) bool)(d), o)
	case func(any) bool:
		return buildPredicate(d, o)
	case ValidatorFn:
		return buildValidator((func(any) []ErrorDetails)(d), o)
	case func(any) []ErrorDetails:
		return buildValidator(d, o)
	case Set:
		t, def := tag("set")
		return newSpec(t, def, setNode{values: append([]any(nil), d...)}), nil
	case Enum:
		def := d.Name
		if def == "" {
			def = "enum"
		}
		t, isDef := tag(def)
		return newSpec(t, isDef, enumNode{enum: d}), nil
	case Tuple:
		return buildTuple(d, o)
	case []any:
		return buildColl(d, o)
	case map[any]any:
		return buildDict(d, o)
	case map[string]any:
		entries := make(map[any]any, len(d))
		for k, v := range d {
			entries[k] = v
		}
		return buildDict(entries, o)
	default:
		return Spec{}, fmt.Errorf("dataspec: unrecognized spec descriptor %v of type %T", descriptor, descriptor)
	}
}

func buildPredicate(fn func(any) bool, o buildOpts) (Spec, error) {
	name := funcName(fn)
	t := o.tag
	def := false
	if !o.tagSet {
		t, def = name, true
	}
	return newSpec(t, def, predicateNode{pred: fn, name: name}), nil
}

func buildValidator(fn func(any) []ErrorDetails, o buildOpts) (Spec, error) {
	name := funcName(fn)
	t := o.tag
	def := false
	if !o.tagSet {
		t, def = name, true
	}
	return newSpec(t, def, validatorNode{fn: fn, name: name}), nil
}

// MustBuild is Build, panicking on construction errors. Intended for specs
// assembled from literals at program start.
func MustBuild(descriptor any, opts ...Option) Spec {
	s, err := Build(descriptor, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// funcName derives a short display name for a function value.
func funcName(fn any) string {
	rf := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if rf == nil {
		return "func"
	}
	name := rf.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	if name == "" {
		return "func"
	}
	return name
}
