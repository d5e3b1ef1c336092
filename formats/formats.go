// Package formats registers the built-in string formats: uuid, email and the
// ISO-8601 date/time family. Call Install once at startup, or take Registry
// and hand it to individual specs.
package formats

import (
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reoring/dataspec"
)

const (
	isoDateLayout = "2006-01-02"
	isoTimeLayout = "15:04:05"
)

var (
	once     sync.Once
	registry *dataspec.FormatRegistry
)

// Registry returns a registry populated with the built-in formats. The same
// instance is returned on every call.
func Registry() *dataspec.FormatRegistry {
	once.Do(func() {
		registry = dataspec.NewFormatRegistry()
		register(registry)
	})
	return registry
}

// Install registers the built-in formats on the shared default registry so
// plain Str specs can name them.
func Install() {
	register(dataspec.DefaultFormats)
}

func register(r *dataspec.FormatRegistry) {
	r.Register("uuid", dataspec.StrFormat{
		Validate: parseValidator("uuid", func(s string) error {
			_, err := uuid.Parse(s)
			return err
		}),
		Conformer: func(v any) dataspec.Conformed {
			u, err := uuid.Parse(v.(string))
			if err != nil {
				return dataspec.Invalid()
			}
			return dataspec.ConformedValue(u)
		},
	})
	r.Register("email", dataspec.StrFormat{
		Validate: parseValidator("email", func(s string) error {
			a, err := mail.ParseAddress(s)
			if err != nil {
				return err
			}
			if a.Address != s {
				return fmt.Errorf("address carries a display name")
			}
			return nil
		}),
	})
	r.Register("iso-date", layoutFormat("iso-date", isoDateLayout))
	r.Register("iso-datetime", layoutFormat("iso-datetime", time.RFC3339))
	r.Register("iso-time", layoutFormat("iso-time", isoTimeLayout))
}

// layoutFormat derives a format from a time layout; conforming yields the
// parsed time.Time.
func layoutFormat(name, layout string) dataspec.StrFormat {
	return dataspec.StrFormat{
		Validate: parseValidator(name, func(s string) error {
			_, err := time.Parse(layout, s)
			return err
		}),
		Conformer: func(v any) dataspec.Conformed {
			t, err := time.Parse(layout, v.(string))
			if err != nil {
				return dataspec.Invalid()
			}
			return dataspec.ConformedValue(t)
		},
	}
}

func parseValidator(name string, parse func(s string) error) dataspec.ValidatorFn {
	return func(v any) []dataspec.ErrorDetails {
		s, ok := v.(string)
		if !ok {
			return []dataspec.ErrorDetails{{
				Message: fmt.Sprintf("value '%v' is not a string", v),
				Pred:    name,
				Value:   v,
			}}
		}
		if err := parse(s); err != nil {
			return []dataspec.ErrorDetails{{
				Message: fmt.Sprintf("string '%s' is not a valid %s: %v", s, name, err),
				Pred:    name,
				Value:   v,
			}}
		}
		return nil
	}
}
