// ABOUTME: Ordered JSON rows for server-owned records
// ABOUTME: Keeps the server's key order so columns render as the API sends them

package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tsundip4/airport-ops-console/internal/client"
)

// Row is one record with its keys in server order.
type Row struct {
	keys   []string
	values map[string]json.RawMessage
}

// DecodeRow parses a JSON object, preserving key order.
func DecodeRow(raw json.RawMessage) (Row, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Row{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Row{}, fmt.Errorf("record is not an object: %s", truncate(raw))
	}

	row := Row{values: map[string]json.RawMessage{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Row{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Row{}, errors.New("record key is not a string")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return Row{}, fmt.Errorf("record field %s: %w", key, err)
		}
		if _, seen := row.values[key]; !seen {
			row.keys = append(row.keys, key)
		}
		row.values[key] = value
	}
	return row, nil
}

// Decode turns a list response (bare array or items envelope) into rows.
func Decode(raw json.RawMessage) ([]Row, error) {
	items, err := client.DecodeItems(raw)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		row, err := DecodeRow(item)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Keys returns the record's keys in server order.
func (r Row) Keys() []string {
	return r.keys
}

// Raw returns the JSON value stored under key.
func (r Row) Raw(key string) (json.RawMessage, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Cell renders the value under key as display text. Null and missing
// values are blank; nested values render as compact JSON.
func (r Row) Cell(key string) string {
	raw, ok := r.values[key]
	if !ok {
		return ""
	}
	return cellText(raw)
}

func cellText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if json.Unmarshal(trimmed, &s) == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if json.Compact(&buf, trimmed) == nil {
		return buf.String()
	}
	return string(trimmed)
}

// MarshalJSON writes the record with its original key order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
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
		buf.Write(r.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the record as an ordered mapping.
func (r Row) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range r.keys {
		var v interface{}
		dec := json.NewDecoder(bytes.NewReader(r.values[k]))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil && err != io.EOF {
			return nil, err
		}
		if n, ok := v.(json.Number); ok {
			v = numberValue(n)
		}

		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: k}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(v); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

// Columns returns the first row's keys, matching how list tables pick
// their header.
func Columns(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].keys
}

func numberValue(n json.Number) interface{} {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func truncate(raw []byte) string {
	const max = 40
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}
