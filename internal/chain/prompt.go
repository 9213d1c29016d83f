// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package chain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/davetashner/batchllm/internal/fault"
)

// TypePrompt is the type tag of a serialized PromptTemplate.
const TypePrompt = "prompt"

// PromptTemplate renders a prompt from chain values. Placeholders are
// written {name}; "{{" and "}}" stand for literal braces.
type PromptTemplate struct {
	Template       string
	InputVariables []string
}

// NewPromptTemplate parses tpl and records its placeholders, in order of
// first appearance, as the input variables.
func NewPromptTemplate(tpl string) (PromptTemplate, error) {
	segs, err := parseTemplate(tpl)
	if err != nil {
		return PromptTemplate{}, err
	}
	var vars []string
	for _, s := range segs {
		if s.variable && !slices.Contains(vars, s.text) {
			vars = append(vars, s.text)
		}
	}
	return PromptTemplate{Template: tpl, InputVariables: vars}, nil
}

// MustPromptTemplate is NewPromptTemplate for templates known at compile
// time. It panics on a malformed template.
func MustPromptTemplate(tpl string) PromptTemplate {
	p, err := NewPromptTemplate(tpl)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate checks that the template parses and that every placeholder is
// declared in InputVariables.
func (p PromptTemplate) Validate() error {
	segs, err := parseTemplate(p.Template)
	if err != nil {
		return err
	}
	for _, s := range segs {
		if s.variable && !slices.Contains(p.InputVariables, s.text) {
			return fault.InvalidArgument("template placeholder {%s} is not a declared input variable", s.text)
		}
	}
	return nil
}

// Format substitutes values into the template. Values are rendered with
// fmt's %v verb.
func (p PromptTemplate) Format(values Values) (string, error) {
	segs, err := parseTemplate(p.Template)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, s := range segs {
		if !s.variable {
			b.WriteString(s.text)
			continue
		}
		v, ok := values[s.text]
		if !ok {
			return "", &fault.MissingInputError{Key: s.text}
		}
		fmt.Fprint(&b, v)
	}
	return b.String(), nil
}

// Serialize returns the prompt's serialized form.
func (p PromptTemplate) Serialize() map[string]any {
	vars := make([]any, len(p.InputVariables))
	for i, v := range p.InputVariables {
		vars[i] = v
	}
	return map[string]any{
		TypeKey:           TypePrompt,
		"template":        p.Template,
		"input_variables": vars,
	}
}

// promptFromMap rebuilds a PromptTemplate. When input_variables is absent
// it is inferred from the template.
func promptFromMap(m map[string]any) (PromptTemplate, error) {
	if typ, ok := m[TypeKey]; ok && typ != TypePrompt {
		return PromptTemplate{}, fault.InvalidArgument("prompt has type %v, want %q", typ, TypePrompt)
	}
	tpl, ok := m["template"].(string)
	if !ok {
		return PromptTemplate{}, fault.InvalidArgument("prompt template must be a string, got %T", m["template"])
	}
	raw, ok := m["input_variables"]
	if !ok {
		return NewPromptTemplate(tpl)
	}
	vars, err := stringList(raw)
	if err != nil {
		return PromptTemplate{}, fmt.Errorf("input_variables: %w", err)
	}
	p := PromptTemplate{Template: tpl, InputVariables: vars}
	if err := p.Validate(); err != nil {
		return PromptTemplate{}, err
	}
	return p, nil
}

type segment struct {
	text     string
	variable bool
}

func parseTemplate(tpl string) ([]segment, error) {
	var segs []segment
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(tpl); i++ {
		c := tpl[i]
		switch {
		case c == '{' && i+1 < len(tpl) && tpl[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(tpl) && tpl[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexAny(tpl[i+1:], "{}")
			if end < 0 || tpl[i+1+end] != '}' {
				return nil, fault.InvalidArgument("unterminated placeholder at offset %d", i)
			}
			name := strings.TrimSpace(tpl[i+1 : i+1+end])
			if name == "" {
				return nil, fault.InvalidArgument("empty placeholder at offset %d", i)
			}
			flush()
			segs = append(segs, segment{text: name, variable: true})
			i += end + 1
		case c == '}':
			return nil, fault.InvalidArgument("unmatched '}' at offset %d", i)
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return segs, nil
}

// stringList accepts []string or a decoded []any of strings.
func stringList(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fault.InvalidArgument("element %d is %T, want string", i, item)
			}
			out[i] = s
		}
		return out, nil
	case nil:
		return nil, nil
	}
	return nil, fault.InvalidArgument("want a list of strings, got %T", v)
}
