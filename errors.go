package dataspec

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrorDetails describes a single Spec failure.
//
// Message is a human-readable description intended for developers; no
// guarantee is made that it is suitable for non-technical users. Pred names
// the check that failed. Value is the offending sub-value. Via lists the tags
// of every Spec evaluated up to and including the failing one for this branch
// of logic; sibling tags are never included. Path lists the keys and indices
// locating the failing sub-value inside the original input, so its length
// tracks nesting depth while Via grows once per evaluated Spec.
type ErrorDetails struct {
	Message string
	Pred    string
	Value   any
	Via     []string
	Path    []any
}

// prepend returns a copy of e with tag prepended to Via. The receiver is
// never mutated; error values may be replayed across restarted sequences.
func (e ErrorDetails) prepend(tag string) ErrorDetails {
	via := make([]string, 0, len(e.Via)+1)
	via = append(via, tag)
	via = append(via, e.Via...)
	e.Via = via
	return e
}

// prependAt returns a copy of e with tag prepended to Via and loc prepended
// to Path.
func (e ErrorDetails) prependAt(tag string, loc any) ErrorDetails {
	e = e.prepend(tag)
	path := make([]any, 0, len(e.Path)+1)
	path = append(path, loc)
	path = append(path, e.Path...)
	e.Path = path
	return e
}

// AsMap converts the error into its documented boundary form: a mapping of
// message, pred, value, via and path with every element stringified, suitable
// for logs or API responses.
func (e ErrorDetails) AsMap() map[string]any {
	return map[string]any{
		"message": e.Message,
		"pred":    e.Pred,
		"value":   fmt.Sprint(e.Value),
		"via":     append([]string(nil), e.Via...),
		"path":    renderPath(e.Path),
	}
}

func renderPath(path []any) []string {
	out := make([]string, len(path))
	for i, p := range path {
		out[i] = fmt.Sprint(p)
	}
	return out
}

// errorDetailsWire fixes the key order of the boundary form.
type errorDetailsWire struct {
	Message string   `json:"message"`
	Pred    string   `json:"pred"`
	Value   string   `json:"value"`
	Via     []string `json:"via"`
	Path    []string `json:"path"`
}

func (e ErrorDetails) wire() errorDetailsWire {
	return errorDetailsWire{
		Message: e.Message,
		Pred:    e.Pred,
		Value:   fmt.Sprint(e.Value),
		Via:     append([]string(nil), e.Via...),
		Path:    renderPath(e.Path),
	}
}

// MarshalJSON emits the boundary form with stable key order.
func (e ErrorDetails) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.wire())
}

// MarshalYAML emits the boundary form as an ordered YAML mapping.
func (e ErrorDetails) MarshalYAML() (any, error) {
	w := e.wire()
	node := &yaml.Node{Kind: yaml.MappingNode}
	appendPair := func(k string, v *yaml.Node) {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, v)
	}
	appendPair("message", &yaml.Node{Kind: yaml.ScalarNode, Value: w.Message})
	appendPair("pred", &yaml.Node{Kind: yaml.ScalarNode, Value: w.Pred})
	appendPair("value", &yaml.Node{Kind: yaml.ScalarNode, Value: w.Value})
	appendPair("via", seqNode(w.Via))
	appendPair("path", seqNode(w.Path))
	return node, nil
}

func seqNode(elems []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for _, e := range elems {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: e})
	}
	return n
}

// ValidationError aggregates every ErrorDetails collected for a value. It is
// returned by Spec.ValidateEx and never wraps an internal engine defect.
type ValidationError struct {
	Errors []ErrorDetails
}

// Error summarizes the first few failures.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "dataspec: validation failed"
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(e.Errors), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		d := e.Errors[i]
		if len(d.Path) > 0 {
			fmt.Fprintf(b, "%s at %v", d.Message, d.Path)
		} else {
			b.WriteString(d.Message)
		}
	}
	if n := len(e.Errors); n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// MarshalJSON emits the collected errors as an array of boundary forms.
func (e *ValidationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Errors)
}

// AsValidationError extracts a ValidationError using errors.As internally.
func AsValidationError(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
