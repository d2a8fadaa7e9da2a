// SPDX-License-Identifier: MIT
// File: document.go
// Role: YAML fragment documents: decoding, name lists and value normalization.

package fragment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/metafactory/deep"
)

// Document is one declarative fragment as written in YAML.
//
//	methods: [greet, "hello=greet"]
//	props:   {n: 1}
//	refs:    {registry: {}}
//	statics: {kind: counter}
//	init:    bump
type Document struct {
	Methods NameList `yaml:"methods,omitempty"`
	Props   deep.Map `yaml:"props,omitempty"`
	// State is an alias of Props; it is merged after Props.
	State   deep.Map       `yaml:"state,omitempty"`
	Refs    map[string]any `yaml:"refs,omitempty"`
	Statics map[string]any `yaml:"statics,omitempty"`
	Init    NameList       `yaml:"init,omitempty"`
}

// NameList is a list of registry names. In YAML it may be a single string
// or a sequence of strings.
type NameList []string

// UnmarshalYAML accepts either a single string or an array of strings.
func (n *NameList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if s == "" {
			*n = NameList{}
		} else {
			*n = NameList{s}
		}
		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}
		*n = arr
		return nil

	default:
		return fmt.Errorf("%w: line %d: expected string or array of names", ErrInvalidDocument, node.Line)
	}
}

// MarshalYAML writes a single name as a scalar.
func (n NameList) MarshalYAML() (any, error) {
	if len(n) == 1 {
		return n[0], nil
	}

	return []string(n), nil
}

// binding splits an entry of the form "alias=name"; a bare name is its own alias.
func binding(entry string) (alias, name string) {
	if a, n, ok := strings.Cut(entry, "="); ok {
		return strings.TrimSpace(a), strings.TrimSpace(n)
	}
	entry = strings.TrimSpace(entry)

	return entry, entry
}

// Parse decodes a single YAML document.
//
// Errors: ErrInvalidDocument for malformed YAML, unknown top-level keys or
// nested mappings with non-string keys.
func Parse(data []byte) (*Document, error) {
	docs, err := ParseAll(data)
	if err != nil {
		return nil, err
	}
	switch len(docs) {
	case 0:
		return &Document{}, nil
	case 1:
		return docs[0], nil
	default:
		return nil, fmt.Errorf("%w: expected one document, found %d", ErrInvalidDocument, len(docs))
	}
}

// ParseAll decodes a stream of YAML documents separated by "---".
func ParseAll(data []byte) ([]*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var docs []*Document
	for i := 0; ; i++ {
		var doc Document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			if errors.Is(err, ErrInvalidDocument) {
				return nil, fmt.Errorf("document #%d: %w", i, err)
			}
			return nil, fmt.Errorf("%w: document #%d: %v", ErrInvalidDocument, i, err)
		}
		if err = doc.normalize(); err != nil {
			return nil, fmt.Errorf("document #%d: %w", i, err)
		}
		docs = append(docs, &doc)
	}
}

// normalize checks every value table holds plain values only.
func (d *Document) normalize() error {
	tables := []struct {
		name string
		m    map[string]any
	}{
		{"props", d.Props},
		{"state", d.State},
		{"refs", d.Refs},
		{"statics", d.Statics},
	}
	for _, t := range tables {
		for k, v := range t.m {
			nv, err := normalizeValue(v)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", t.name, k, err)
			}
			t.m[k] = nv
		}
	}

	return nil
}

// normalizeValue rewrites map[any]any nodes whose keys are all strings and
// rejects the rest.
func normalizeValue(v any) (any, error) {
	switch typed := v.(type) {
	case map[string]any:
		for k, e := range typed {
			ne, err := normalizeValue(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			typed[k] = ne
		}
		return typed, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, e := range typed {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: non-string key %v (%T)", ErrInvalidDocument, k, k)
			}
			ne, err := normalizeValue(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", ks, err)
			}
			out[ks] = ne
		}
		return out, nil
	case []any:
		for i, e := range typed {
			ne, err := normalizeValue(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			typed[i] = ne
		}
		return typed, nil
	default:
		return v, nil
	}
}
