package sheet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrUnknownPayload is returned by DecodeJSON for shapes it does not know.
var ErrUnknownPayload = errors.New("sheet: unknown payload shape")

// DecodeJSON accepts the shapes a sheet webhook may answer with:
//
//	[{"col": "v", ...}, ...]          headers from the first object's keys
//	{"headers": [...], "rows": [[...]]}
//	{"data": [{"col": "v", ...}, ...]}
//
// Object keys keep their document order. Non-string cells are rendered as
// their JSON text; null becomes "".
func DecodeJSON(data []byte) (Table, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Table{}, ErrUnknownPayload
	}

	switch data[0] {
	case '[':
		return decodeObjects(data)
	case '{':
		obj, err := decodeObject(data)
		if err != nil {
			return Table{}, err
		}
		if h, ok := obj.get("headers"); ok {
			if r, ok := obj.get("rows"); ok {
				return decodeHeaderRows(h, r)
			}
		}
		if d, ok := obj.get("data"); ok && len(d) > 0 && d[0] == '[' {
			return decodeObjects(d)
		}
	}
	return Table{}, ErrUnknownPayload
}

func decodeObjects(data []byte) (Table, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return Table{}, fmt.Errorf("sheet: decode rows: %w", err)
	}
	t := Table{Headers: []string{}, Rows: make([][]string, 0, len(items))}
	for i, raw := range items {
		obj, err := decodeObject(raw)
		if err != nil {
			return Table{}, fmt.Errorf("sheet: decode row %d: %w", i, err)
		}
		if i == 0 {
			t.Headers = append(t.Headers, obj.keys...)
		}
		row := make([]string, len(obj.values))
		for j, v := range obj.values {
			row[j] = cellText(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func decodeHeaderRows(headers, rows json.RawMessage) (Table, error) {
	var rawHeaders []json.RawMessage
	if err := json.Unmarshal(headers, &rawHeaders); err != nil {
		return Table{}, fmt.Errorf("sheet: decode headers: %w", err)
	}
	var rawRows [][]json.RawMessage
	if err := json.Unmarshal(rows, &rawRows); err != nil {
		return Table{}, fmt.Errorf("sheet: decode rows: %w", err)
	}
	t := Table{
		Headers: make([]string, len(rawHeaders)),
		Rows:    make([][]string, len(rawRows)),
	}
	for i, h := range rawHeaders {
		t.Headers[i] = cellText(h)
	}
	for i, r := range rawRows {
		row := make([]string, len(r))
		for j, v := range r {
			row[j] = cellText(v)
		}
		t.Rows[i] = row
	}
	return t, nil
}

type orderedObject struct {
	keys   []string
	values []json.RawMessage
}

func (o orderedObject) get(key string) (json.RawMessage, bool) {
	for i, k := range o.keys {
		if k == key {
			return o.values[i], true
		}
	}
	return nil, false
}

// decodeObject walks a JSON object with a token decoder so key order is
// preserved, which encoding/json maps would lose.
func decodeObject(data []byte) (orderedObject, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return orderedObject{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return orderedObject{}, ErrUnknownPayload
	}
	var obj orderedObject
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return orderedObject{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return orderedObject{}, ErrUnknownPayload
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return orderedObject{}, err
		}
		obj.keys = append(obj.keys, key)
		obj.values = append(obj.values, v)
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return orderedObject{}, err
	}
	return obj, nil
}

func cellText(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return string(v)
		}
		return s
	case 'n':
		return ""
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return string(v)
		}
		return buf.String()
	}
}
