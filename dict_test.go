package dataspec_test

import (
	"reflect"
	"testing"

	"github.com/reoring/dataspec"
)

func TestDictSpec_ValidatesByKey(t *testing.T) {
	s := dataspec.MustBuild(map[any]any{
		"a": dataspec.IsStr,
		"b": dataspec.IsNum,
	}, dataspec.Tag("record"))
	if !s.IsValid(map[any]any{"a": "x", "b": 1}) {
		t.Fatalf("conforming mapping should be valid")
	}
	errs := s.ValidateAll(map[any]any{"a": 1, "b": 1})
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %d", len(errs))
	}
	if got := errs[0].Path; !reflect.DeepEqual(got, []any{"a"}) {
		t.Fatalf("path = %v, want [a]", got)
	}
	if errs[0].Via[0] != "record" {
		t.Fatalf("via = %v, want leading record", errs[0].Via)
	}
}

func TestDictSpec_MissingRequiredKey(t *testing.T) {
	s := dataspec.MustBuild(map[any]any{
		"a": dataspec.IsStr,
		"b": dataspec.IsNum,
	})
	errs := s.ValidateAll(map[any]any{"a": "x"})
	if len(errs) != 1 {
		t.Fatalf("expected one missing-key error, got %d", len(errs))
	}
	if got := errs[0].Path; !reflect.DeepEqual(got, []any{"b"}) {
		t.Fatalf("missing-key path = %v, want [b]", got)
	}
}

func TestDictSpec_OptionalKey(t *testing.T) {
	s := dataspec.MustBuild(map[any]any{
		"a":                dataspec.IsStr,
		dataspec.Opt("b"): dataspec.IsNum,
	})
	if !s.IsValid(map[any]any{"a": "x"}) {
		t.Fatalf("absent optional key should be fine")
	}
	if s.IsValid(map[any]any{"a": "x", "b": "not a number"}) {
		t.Fatalf("present optional key must still satisfy its spec")
	}
}

func TestDictSpec_NotAMapping(t *testing.T) {
	s := dataspec.MustBuild(map[any]any{"a": dataspec.IsStr})
	errs := s.ValidateAll([]any{"a"})
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error for a non-mapping, got %d", len(errs))
	}
}

func TestDictSpec_DeterministicErrorOrder(t *testing.T) {
	s := dataspec.MustBuild(map[any]any{
		"a": dataspec.IsStr,
		"b": dataspec.IsStr,
		"c": dataspec.IsStr,
	})
	in := map[any]any{"a": 1, "b": 2, "c": 3}
	want := s.ValidateAll(in)
	for i := 0; i < 10; i++ {
		if got := s.ValidateAll(in); !reflect.DeepEqual(got, want) {
			t.Fatalf("error order varied across runs:\nwant %v\ngot  %v", want, got)
		}
	}
	if !reflect.DeepEqual(want[0].Path, []any{"a"}) || !reflect.DeepEqual(want[2].Path, []any{"c"}) {
		t.Fatalf("errors should come out in sorted key order, got %v", want)
	}
}

func TestDictSpec_ConformDropsUndeclaredKeys(t *testing.T) {
	s := dataspec.MustBuild(map[any]any{"a": dataspec.IsStr})
	c := s.Conform(map[any]any{"a": "x", "zzz": "dropped"})
	if !c.Valid() {
		t.Fatalf("unexpected invalid conformation")
	}
	got := c.Value().(map[any]any)
	if len(got) != 1 || got["a"] != "x" {
		t.Fatalf("conform should keep only declared keys, got %v", got)
	}
}

func TestDictSpec_ConformAppliesValueConformers(t *testing.T) {
	double := func(v any) dataspec.Conformed {
		return dataspec.ConformedValue(v.(int) * 2)
	}
	s := dataspec.MustBuild(map[any]any{
		"n": dataspec.MustBuild(dataspec.IsInt, dataspec.ConformWith(double)),
	})
	c := s.Conform(map[any]any{"n": 21})
	if got := c.Value().(map[any]any)["n"]; got != 42 {
		t.Fatalf("value conformer not applied, got %v", got)
	}
}

func TestDictSpec_ConformTypeChangingValue(t *testing.T) {
	s := dataspec.MustBuild(map[any]any{
		"page": dataspec.MustBuild(dataspec.IsStr, dataspec.ConformWith(atoiConformer)),
	})
	c := s.Conform(map[string]string{"page": "7"})
	if !c.Valid() {
		t.Fatalf("unexpected invalid conformation")
	}
	got, ok := c.Value().(map[any]any)
	if !ok {
		t.Fatalf("a typed map whose values change type should conform to map[any]any, got %T", c.Value())
	}
	if got["page"] != 7 {
		t.Fatalf("conformed value must be held as-is, got %v", got["page"])
	}
}

func TestDictSpec_ConformKeepsTypedMap(t *testing.T) {
	s := dataspec.MustBuild(map[any]any{"a": dataspec.IsStr})
	c := s.Conform(map[string]string{"a": "x", "z": "dropped"})
	got, ok := c.Value().(map[string]string)
	if !ok {
		t.Fatalf("conformed values still fit the input map type, got %T", c.Value())
	}
	if len(got) != 1 || got["a"] != "x" {
		t.Fatalf("unexpected conformed map %v", got)
	}
}

func TestDictSpec_DuplicateKeyFailsConstruction(t *testing.T) {
	_, err := dataspec.Build(map[any]any{
		"a":                dataspec.IsStr,
		dataspec.Opt("a"): dataspec.IsNum,
	})
	if err == nil {
		t.Fatalf("expected a construction error for a duplicated key")
	}
}

func TestMerge_CombinesKeySets(t *testing.T) {
	left := dataspec.MustBuild(map[any]any{"a": dataspec.IsStr}, dataspec.Tag("left"))
	right := dataspec.MustBuild(map[any]any{"b": dataspec.IsNum}, dataspec.Tag("right"))
	merged, err := dataspec.Merge(left, right)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if !merged.IsValid(map[any]any{"a": "x", "b": 1}) {
		t.Fatalf("merged spec should require both key sets")
	}
	if merged.IsValid(map[any]any{"a": "x"}) {
		t.Fatalf("merged spec should reject inputs missing the right keys")
	}
	if merged.Tag() != "merge-of-left-right" {
		t.Fatalf("tag = %q", merged.Tag())
	}
}

func TestMerge_LastWriteWins(t *testing.T) {
	left := dataspec.MustBuild(map[any]any{"v": dataspec.IsStr})
	right := dataspec.MustBuild(map[any]any{"v": dataspec.IsNum})
	merged, err := dataspec.Merge(left, right)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if !merged.IsValid(map[any]any{"v": 1}) {
		t.Fatalf("later spec should win for a shared key")
	}
	if merged.IsValid(map[any]any{"v": "str"}) {
		t.Fatalf("earlier spec's value spec should be displaced")
	}
}

func TestMerge_RequiredOptionalConflict(t *testing.T) {
	left := dataspec.MustBuild(map[any]any{"k": dataspec.IsStr})
	right := dataspec.MustBuild(map[any]any{dataspec.Opt("k"): dataspec.IsStr})
	if _, err := dataspec.Merge(left, right); err == nil {
		t.Fatalf("expected a construction error for a required/optional conflict")
	}
}

func TestMerge_RejectsNonMappingSpec(t *testing.T) {
	left := dataspec.MustBuild(map[any]any{"a": dataspec.IsStr})
	if _, err := dataspec.Merge(left, dataspec.IsStr); err == nil {
		t.Fatalf("expected a construction error when merging a non-mapping spec")
	}
}

func TestMerge_SingleSpecPassthrough(t *testing.T) {
	only := dataspec.MustBuild(map[any]any{"a": dataspec.IsStr}, dataspec.Tag("only"))
	merged, err := dataspec.Merge(only)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if merged.Tag() != "only" {
		t.Fatalf("single-input merge should return the spec unchanged")
	}
}
