package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalYAML emits the record as a mapping node in field order.
func (r *Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if r == nil {
		return node, nil
	}
	for _, k := range r.keys {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(k); err != nil {
			return nil, fmt.Errorf("encode key %q: %w", k, err)
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(r.values[k]); err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

// UnmarshalYAML decodes a mapping node, keeping key order at every depth.
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	out, err := decodeMapping(node)
	if err != nil {
		return err
	}
	*r = *out
	return nil
}

func decodeMapping(n *yaml.Node) (*Record, error) {
	for n.Kind == yaml.DocumentNode || n.Kind == yaml.AliasNode {
		if n.Kind == yaml.AliasNode {
			n = n.Alias
			continue
		}
		if len(n.Content) == 0 {
			return New(), nil
		}
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping, got %s", n.Line, kindName(n.Kind))
	}

	r := New()
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valueNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}

		// "<<: *anchor" merges fields that the mapping does not set itself.
		if keyNode.Tag == "!!merge" || (keyNode.Value == "<<" && keyNode.Tag == "") {
			if err := mergeInto(r, valueNode); err != nil {
				return nil, err
			}
			continue
		}

		value, err := decodeNode(valueNode)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", keyNode.Value, err)
		}
		r.Set(keyNode.Value, value)
	}
	return r, nil
}

func mergeInto(r *Record, n *yaml.Node) error {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	sources := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		sources = n.Content
	}
	for _, src := range sources {
		merged, err := decodeMapping(src)
		if err != nil {
			return fmt.Errorf("merge key: %w", err)
		}
		for _, k := range merged.keys {
			if !r.Has(k) {
				r.Set(k, merged.values[k])
			}
		}
	}
	return nil
}

func decodeNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return decodeNode(n.Content[0])
	case yaml.AliasNode:
		return decodeNode(n.Alias)
	case yaml.MappingNode:
		return decodeMapping(n)
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := decodeNode(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "empty node"
	}
}

// MarshalJSON emits a JSON object in field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if r != nil {
		for i, k := range r.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			value, err := json.Marshal(r.values[k])
			if err != nil {
				return nil, fmt.Errorf("marshal %q: %w", k, err)
			}
			buf.Write(value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order at every depth.
// Integral numbers decode to int, others to float64, matching the YAML decoder.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected a JSON object, got %v", tok)
	}
	out, err := decodeJSONObject(dec)
	if err != nil {
		return err
	}
	*r = *out
	return nil
}

func decodeJSONObject(dec *json.Decoder) (*Record, error) {
	r := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("record: expected object key, got %v", tok)
		}
		value, err := decodeJSONValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		r.Set(key, value)
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return r, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			list := []any{}
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), nil
		}
		return t.Float64()
	default:
		return t, nil
	}
}
