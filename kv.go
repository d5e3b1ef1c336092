package dataspec

import (
	"iter"
	"reflect"
	"sort"

	"github.com/reoring/dataspec/i18n"
)

// kvNode validates homogeneous mappings: every key against one spec, every
// value against another. Unlike dictNode it has no declared key set, so the
// whole map is traversed.
type kvNode struct {
	key         Spec
	val         Spec
	conformKeys bool
}

// KV builds a spec over mapping values whose keys all satisfy keyDesc and
// whose values all satisfy valDesc. Pass ConformKeys() to have Conform
// rewrite keys as well as values.
func KV(keyDesc, valDesc any, opts ...Option) (Spec, error) {
	var o buildOpts
	for _, opt := range opts {
		opt(&o)
	}
	ks, err := Build(keyDesc)
	if err != nil {
		return Spec{}, err
	}
	vs, err := Build(valDesc)
	if err != nil {
		return Spec{}, err
	}
	t, def := "kv", true
	if o.tagSet {
		t, def = o.tag, false
	}
	s := newSpec(t, def, kvNode{key: ks, val: vs, conformKeys: o.conformKeys})
	if o.conformer != nil {
		s = s.ComposeConformer(o.conformer)
	}
	return s, nil
}

// MustKV is KV that panics on a construction error.
func MustKV(keyDesc, valDesc any, opts ...Option) Spec {
	s, err := KV(keyDesc, valDesc, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (n kvNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		rv := reflect.ValueOf(v)
		if v == nil || rv.Kind() != reflect.Map {
			yield(ErrorDetails{
				Message: i18n.T("not_a_mapping", nil),
				Pred:    tag,
				Value:   v,
				Via:     []string{tag},
			})
			return
		}
		for _, mk := range sortedMapKeys(rv) {
			k := mk.Interface()
			if !forward(yield, enrichAt(tag, k, n.key.Validate(k))) {
				return
			}
			if !forward(yield, enrichAt(tag, k, n.val.Validate(rv.MapIndex(mk).Interface()))) {
				return
			}
		}
	}
}

// sortedMapKeys orders keys by their rendered form so diagnostics come out
// deterministically regardless of map iteration order.
func sortedMapKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return renderKey(keys[i].Interface()) < renderKey(keys[j].Interface())
	})
	return keys
}

func (n kvNode) conform(v any) Conformed {
	rv := reflect.ValueOf(v)
	entries := make([]mapEntry, 0, rv.Len())
	for _, mk := range rv.MapKeys() {
		k := mk.Interface()
		if n.conformKeys {
			ck := n.key.ConformValid(k)
			if !ck.Valid() {
				return Invalid()
			}
			k = ck.Value()
		}
		cv := n.val.ConformValid(rv.MapIndex(mk).Interface())
		if !cv.Valid() {
			return Invalid()
		}
		entries = append(entries, mapEntry{key: k, val: cv.Value()})
	}
	return ConformedValue(conformedMap(rv.Type(), entries))
}
