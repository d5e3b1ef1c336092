package dataspec

// Package dataspec provides:
//
// - Composable Specs declaring the valid shape of arbitrary data (Build + factories)
// - Validation with structured, restartable diagnostics (ErrorDetails, via/path tracking)
// - Conformation of valid values into a canonical representation (Conformed | Invalid)
// - Boolean combinators (All/Any) and mapping Merge with deterministic semantics
// - A named string-format registry consumed by the Str factory (see formats/)
//
// Design policy:
// - Keep the public API in the root package; format providers live under formats/.
// - Specs are immutable after construction; WithTag/WithConformer return copies.
// - Construction errors are fatal and synchronous; validation errors are data.
// - No I/O anywhere in the core: validation and conformation are pure computation.
//
// Typical usage:
//
//	spec := dataspec.MustBuild(map[any]any{
//		"id":              dataspec.TypeOf[string](),
//		dataspec.Opt("n"): dataspec.TypeOf[int](),
//	})
//	if !spec.IsValid(v) {
//		for err := range spec.Validate(v) { ... }
//	}
//	c := spec.Conform(v) // c.Valid() reports whether v conformed
