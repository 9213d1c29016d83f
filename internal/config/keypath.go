// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// GetValue returns the value at a dot-notation key path such as "model" or
// "stuff.input_key". Unset fields are reported as errors.
func GetValue(cfg *Config, keyPath string) (any, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	var cur any = m
	for _, part := range strings.Split(keyPath, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("key %q: parent is not a map", part)
		}
		if cur, ok = node[part]; !ok {
			return nil, fmt.Errorf("key %q not set", keyPath)
		}
	}
	return cur, nil
}

// SetValue stores rawValue at keyPath in a raw YAML map, converted to the
// type of the Config field the path names. Missing parent maps are created.
func SetValue(data map[string]any, keyPath, rawValue string) error {
	field, err := lookupField(keyPath)
	if err != nil {
		return err
	}
	value, err := convert(field.Type, rawValue)
	if err != nil {
		return fmt.Errorf("%s: %w", keyPath, err)
	}

	parts := strings.Split(keyPath, ".")
	node := data
	for _, part := range parts[:len(parts)-1] {
		switch child := node[part].(type) {
		case nil:
			next := map[string]any{}
			node[part] = next
			node = next
		case map[string]any:
			node = child
		default:
			return fmt.Errorf("key %q is not a map", part)
		}
	}
	node[parts[len(parts)-1]] = value
	return nil
}

// convert parses s as a value of Go type t, as it appears in YAML. Lists
// are comma separated.
func convert(t reflect.Type, s string) (any, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int:
		return cast.ToIntE(s)
	case reflect.Float64:
		return cast.ToFloat64E(s)
	case reflect.Bool:
		return cast.ToBoolE(s)
	case reflect.Slice:
		var out []any
		for _, item := range strings.Split(s, ",") {
			out = append(out, item)
		}
		return out, nil
	default:
		return s, nil
	}
}

// FlattenMap flattens nested maps into dot-notation keys.
func FlattenMap(m map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for k, v := range m {
		if prefix != "" {
			k = prefix + "." + k
		}
		sub, ok := v.(map[string]any)
		if !ok {
			out[k] = v
			continue
		}
		for sk, sv := range FlattenMap(sub, k) {
			out[sk] = sv
		}
	}
	return out
}

// ValidateKeyPath checks that a dot-notation key path names a settable
// Config field. Valid keys come from the yaml struct tags.
func ValidateKeyPath(keyPath string) error {
	_, err := lookupField(keyPath)
	return err
}

func lookupField(keyPath string) (reflect.StructField, error) {
	if keyPath == "" {
		return reflect.StructField{}, fmt.Errorf("empty key path")
	}
	parts := strings.Split(keyPath, ".")

	top := yamlFields(reflect.TypeOf(Config{}))
	field, ok := top[parts[0]]
	if !ok {
		return field, fmt.Errorf("unknown key %q; valid top-level keys: %s", parts[0], sortedKeys(top))
	}
	if field.Type.Kind() != reflect.Struct {
		if len(parts) > 1 {
			return field, fmt.Errorf("key %q is a scalar; cannot use sub-keys", parts[0])
		}
		return field, nil
	}

	if len(parts) != 2 {
		return field, fmt.Errorf("%s requires exactly one field (e.g. %s.input_key)", parts[0], parts[0])
	}
	nested := yamlFields(field.Type)
	sub, ok := nested[parts[1]]
	if !ok {
		return sub, fmt.Errorf("unknown %s field %q; valid fields: %s", parts[0], parts[1], sortedKeys(nested))
	}
	return sub, nil
}

// ToMap converts a Config to a map via YAML round-trip. Unset fields are
// omitted.
func ToMap(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// yamlFields maps yaml tag names to struct fields.
func yamlFields(t reflect.Type) map[string]reflect.StructField {
	fields := make(map[string]reflect.StructField)
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name != "" && name != "-" {
			fields[name] = f
		}
	}
	return fields
}

func sortedKeys(m map[string]reflect.StructField) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return strings.Join(keys, ", ")
}
