package dataspec_test

import (
	"sync"
	"testing"

	"github.com/reoring/dataspec"
)

func TestFormatRegistry_RegisterAndLookup(t *testing.T) {
	reg := dataspec.NewFormatRegistry()
	if _, ok := reg.Lookup("nope"); ok {
		t.Fatalf("empty registry should miss")
	}
	reg.Register("hex", dataspec.StrFormat{
		Validate: func(v any) []dataspec.ErrorDetails { return nil },
	})
	f, ok := reg.Lookup("hex")
	if !ok || f.Validate == nil {
		t.Fatalf("registered format should be found")
	}
	if names := reg.Names(); len(names) != 1 || names[0] != "hex" {
		t.Fatalf("names = %v", names)
	}
}

func TestFormatRegistry_ReplaceExisting(t *testing.T) {
	reg := dataspec.NewFormatRegistry()
	reg.Register("f", dataspec.StrFormat{})
	reg.Register("f", dataspec.StrFormat{
		Conformer: func(v any) dataspec.Conformed { return dataspec.ConformedValue("new") },
	})
	f, _ := reg.Lookup("f")
	if f.Conformer == nil {
		t.Fatalf("re-registration should replace the format")
	}
}

func TestFormatRegistry_ConcurrentUse(t *testing.T) {
	reg := dataspec.NewFormatRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.Register("shared", dataspec.StrFormat{})
		}()
		go func() {
			defer wg.Done()
			reg.Lookup("shared")
		}()
	}
	wg.Wait()
}
