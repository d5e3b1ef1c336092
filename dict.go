package dataspec

import (
	"fmt"
	"iter"
	"reflect"
	"sort"
	"strings"

	"github.com/reoring/dataspec/i18n"
)

type keySpec struct {
	key      any
	spec     Spec
	optional bool
}

// dictNode validates mappings against per-key child specs. Go maps carry no
// declaration order, so the node fixes a deterministic order at construction:
// required keys first, then optional, each sorted by rendered key.
type dictNode struct {
	keys []keySpec
}

func buildDict(desc map[any]any, o buildOpts) (Spec, error) {
	keys, err := buildKeySpecs(desc)
	if err != nil {
		return Spec{}, err
	}
	t, def := "map", true
	if o.tagSet {
		t, def = o.tag, false
	}
	return newSpec(t, def, dictNode{keys: keys}), nil
}

// buildKeySpecs resolves a key/descriptor mapping into sorted keySpecs,
// unwrapping Opt markers and rejecting duplicate keys.
func buildKeySpecs(desc map[any]any) ([]keySpec, error) {
	seen := map[string]bool{}
	var keys []keySpec
	for k, d := range desc {
		ks := keySpec{key: k}
		if opt, ok := k.(OptionalKey); ok {
			ks.key = opt.Key
			ks.optional = true
		}
		rk := renderKey(ks.key)
		if seen[rk] {
			return nil, fmt.Errorf("dataspec: mapping key %v declared more than once", ks.key)
		}
		seen[rk] = true
		child, err := Build(d)
		if err != nil {
			return nil, err
		}
		ks.spec = child
		keys = append(keys, ks)
	}
	sortKeySpecs(keys)
	return keys, nil
}

func sortKeySpecs(keys []keySpec) {
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].optional != keys[j].optional {
			return !keys[i].optional
		}
		return renderKey(keys[i].key) < renderKey(keys[j].key)
	})
}

func renderKey(k any) string { return fmt.Sprint(k) }

func (n dictNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
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
		for _, ks := range n.keys {
			val, present := mapLookup(rv, ks.key)
			switch {
			case present:
				if !forward(yield, enrichAt(tag, ks.key, ks.spec.Validate(val))) {
					return
				}
			case !ks.optional:
				if !yield(ErrorDetails{
					Message: i18n.T("missing_key", map[string]string{"key": renderKey(ks.key)}),
					Pred:    ks.spec.Tag(),
					Value:   v,
					Via:     []string{tag},
					Path:    []any{ks.key},
				}) {
					return
				}
			}
		}
	}
}

// conform builds a new mapping holding exactly the declared keys, each mapped
// to its child's conformed value. Undeclared input keys are dropped.
func (n dictNode) conform(v any) Conformed {
	rv := reflect.ValueOf(v)
	entries := make([]mapEntry, 0, len(n.keys))
	for _, ks := range n.keys {
		val, present := mapLookup(rv, ks.key)
		if !present {
			continue
		}
		cv := ks.spec.ConformValid(val)
		if !cv.Valid() {
			return Invalid()
		}
		entries = append(entries, mapEntry{key: ks.key, val: cv.Value()})
	}
	return ConformedValue(conformedMap(rv.Type(), entries))
}

type mapEntry struct {
	key any
	val any
}

var anyMapType = reflect.TypeOf(map[any]any(nil))

// conformedMap rebuilds entries as a map of type t when every key and value
// still fits it, and as a map[any]any otherwise. A child conformer may change
// a value's type; the container must hold the conformed value as-is, never a
// coerced rendering of it.
func conformedMap(t reflect.Type, entries []mapEntry) any {
	for _, e := range entries {
		if !fitsSlot(t.Key(), e.key) || !fitsSlot(t.Elem(), e.val) {
			t = anyMapType
			break
		}
	}
	out := reflect.MakeMapWithSize(t, len(entries))
	for _, e := range entries {
		out.SetMapIndex(slotValue(t.Key(), e.key), slotValue(t.Elem(), e.val))
	}
	return out.Interface()
}

// mapLookup fetches key from a reflected map, tolerating key types that do
// not fit the map's key type (reported as absent rather than panicking).
func mapLookup(rv reflect.Value, key any) (any, bool) {
	kt := rv.Type().Key()
	var kv reflect.Value
	if key == nil {
		if !isNilableKind(kt.Kind()) && kt.Kind() != reflect.Interface {
			return nil, false
		}
		kv = reflect.Zero(kt)
	} else {
		kv = reflect.ValueOf(key)
		switch {
		case kv.Type().AssignableTo(kt):
		case kv.Type().ConvertibleTo(kt):
			kv = kv.Convert(kt)
		default:
			return nil, false
		}
	}
	mv := rv.MapIndex(kv)
	if !mv.IsValid() {
		return nil, false
	}
	return mv.Interface(), true
}

func isNilableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Pointer, reflect.Slice:
		return true
	}
	return false
}

// Merge combines two or more mapping Specs into one. The merge folds strictly
// left to right: a key declared in more than one input takes the value spec
// of the later input (last-write-wins), but a key whose required/optional
// status differs across inputs fails construction rather than being silently
// resolved. Merging a non-mapping Spec fails construction.
func Merge(specs ...Spec) (Spec, error) {
	if len(specs) == 0 {
		return Spec{}, fmt.Errorf("dataspec: must provide at least one mapping spec to merge")
	}
	if len(specs) == 1 {
		return specs[0], nil
	}
	merged := map[string]keySpec{}
	tags := make([]string, 0, len(specs))
	for _, s := range specs {
		dn, ok := s.node.(dictNode)
		if !ok {
			return Spec{}, fmt.Errorf("dataspec: can only merge mapping specs, not %q", s.Tag())
		}
		tags = append(tags, s.Tag())
		for _, ks := range dn.keys {
			rk := renderKey(ks.key)
			if prev, exists := merged[rk]; exists && prev.optional != ks.optional {
				return Spec{}, fmt.Errorf("dataspec: key %v is required in one merged spec and optional in another", ks.key)
			}
			merged[rk] = ks
		}
	}
	keys := make([]keySpec, 0, len(merged))
	for _, ks := range merged {
		keys = append(keys, ks)
	}
	sortKeySpecs(keys)
	tag := "merge-of-" + strings.Join(tags, "-")
	return newSpec(tag, true, dictNode{keys: keys}), nil
}
