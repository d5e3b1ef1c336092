package dataspec

import (
	"fmt"
	"iter"
	"reflect"
	"strconv"

	"github.com/reoring/dataspec/i18n"
)

// CollOpts is the options record recognized in position 1 of a collection
// descriptor.
type CollOpts struct {
	// Kind, when set, requires the input container to be exactly this type.
	Kind reflect.Type
	// Count requires an exact length; it cannot be combined with
	// MinLength/MaxLength.
	Count *int
	// MinLength and MaxLength bound the container length inclusively.
	MinLength *int
	MaxLength *int
	// Into, when set, is the slice type the default conformer builds; the
	// input's own type is used otherwise.
	Into reflect.Type
}

type collNode struct {
	elem Spec
	opts CollOpts
}

func buildColl(desc []any, o buildOpts) (Spec, error) {
	if len(desc) < 1 || len(desc) > 2 {
		return Spec{}, fmt.Errorf("dataspec: collection descriptor must hold an element descriptor and an optional CollOpts, got %d entries", len(desc))
	}
	elem, err := Build(desc[0])
	if err != nil {
		return Spec{}, err
	}
	var opts CollOpts
	if len(desc) == 2 {
		co, ok := desc[1].(CollOpts)
		if !ok {
			return Spec{}, fmt.Errorf("dataspec: collection options must be a CollOpts record, got %T", desc[1])
		}
		opts = co
	}
	if err := checkCollOpts(opts); err != nil {
		return Spec{}, err
	}
	t, def := "coll", true
	if o.tagSet {
		t, def = o.tag, false
	}
	return newSpec(t, def, collNode{elem: elem, opts: opts}), nil
}

func checkCollOpts(o CollOpts) error {
	for _, b := range []struct {
		name string
		val  *int
	}{{"count", o.Count}, {"minlength", o.MinLength}, {"maxlength", o.MaxLength}} {
		if b.val != nil && *b.val < 0 {
			return fmt.Errorf("dataspec: collection %s cannot be less than 0", b.name)
		}
	}
	if o.Count != nil && (o.MinLength != nil || o.MaxLength != nil) {
		return fmt.Errorf("dataspec: collection count cannot be combined with minlength or maxlength")
	}
	if o.MinLength != nil && o.MaxLength != nil && *o.MinLength > *o.MaxLength {
		return fmt.Errorf("dataspec: collection minlength %d is greater than maxlength %d", *o.MinLength, *o.MaxLength)
	}
	if o.Into != nil && o.Into.Kind() != reflect.Slice {
		return fmt.Errorf("dataspec: collection into type must be a slice type, got %s", o.Into)
	}
	return nil
}

// containerError reports the first failing container-level constraint, if
// any. A malformed container shape makes per-element errors meaningless, so
// the caller never descends after a container-level failure.
func (n collNode) containerError(tag string, v any, rv reflect.Value) (ErrorDetails, bool) {
	fail := func(code string, data map[string]string) (ErrorDetails, bool) {
		return ErrorDetails{
			Message: i18n.T(code, data),
			Pred:    tag,
			Value:   v,
			Via:     []string{tag},
		}, true
	}
	if n.opts.Kind != nil && rv.Type() != n.opts.Kind {
		return fail("coll_kind", map[string]string{"type": rv.Type().String(), "want": n.opts.Kind.String()})
	}
	length := rv.Len()
	if n.opts.Count != nil && length != *n.opts.Count {
		return fail("coll_count", map[string]string{"count": strconv.Itoa(*n.opts.Count), "got": strconv.Itoa(length)})
	}
	if n.opts.MinLength != nil && length < *n.opts.MinLength {
		return fail("coll_too_short", map[string]string{"min": strconv.Itoa(*n.opts.MinLength), "got": strconv.Itoa(length)})
	}
	if n.opts.MaxLength != nil && length > *n.opts.MaxLength {
		return fail("coll_too_long", map[string]string{"max": strconv.Itoa(*n.opts.MaxLength), "got": strconv.Itoa(length)})
	}
	return ErrorDetails{}, false
}

func (n collNode) validate(tag string, v any) iter.Seq[ErrorDetails] {
	return func(yield func(ErrorDetails) bool) {
		rv := reflect.ValueOf(v)
		if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			yield(ErrorDetails{
				Message: i18n.T("not_a_collection", nil),
				Pred:    tag,
				Value:   v,
				Via:     []string{tag},
			})
			return
		}
		if e, failed := n.containerError(tag, v, rv); failed {
			yield(e)
			return
		}
		for i := 0; i < rv.Len(); i++ {
			if !forward(yield, enrichAt(tag, i, n.elem.Validate(rv.Index(i).Interface()))) {
				return
			}
		}
	}
}

func (n collNode) conform(v any) Conformed {
	rv := reflect.ValueOf(v)
	length := rv.Len()
	conformed := make([]any, length)
	for i := 0; i < length; i++ {
		cv := n.elem.ConformValid(rv.Index(i).Interface())
		if !cv.Valid() {
			return Invalid()
		}
		conformed[i] = cv.Value()
	}
	outType := n.opts.Into
	if outType == nil {
		outType = rv.Type()
	}
	elemType := outType.Elem()
	for _, cv := range conformed {
		if fitsSlot(elemType, cv) {
			continue
		}
		// An element conformer changed the element type out from under the
		// container. An explicit Into target cannot hold the result; a
		// derived type falls back to a plain []any holding the conformed
		// values untouched.
		if n.opts.Into != nil {
			return Invalid()
		}
		return ConformedValue(conformed)
	}
	var out reflect.Value
	switch outType.Kind() {
	case reflect.Slice:
		out = reflect.MakeSlice(outType, length, length)
	default: // array input conformed in place-shape
		out = reflect.New(outType).Elem()
	}
	for i, cv := range conformed {
		out.Index(i).Set(slotValue(elemType, cv))
	}
	return ConformedValue(out.Interface())
}

// fitsSlot reports whether v can land in a container slot of type t without
// changing its representation. Conversions count only between numeric kinds;
// lossy ones, such as int to string (which yields the code-point string),
// never fit.
func fitsSlot(t reflect.Type, v any) bool {
	if v == nil {
		return t.Kind() == reflect.Interface || isNilableKind(t.Kind())
	}
	rt := reflect.TypeOf(v)
	if rt.AssignableTo(t) {
		return true
	}
	return numericKind(rt.Kind()) && numericKind(t.Kind()) && rt.ConvertibleTo(t)
}

// slotValue renders v as a value of slot type t. Callers check fitsSlot
// first; anything else is a conformer defect and panics in Convert.
func slotValue(t reflect.Type, v any) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv
	}
	return rv.Convert(t)
}

func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
