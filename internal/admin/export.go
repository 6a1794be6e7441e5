package admin

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"selambus/internal/domain"
)

// Export renders one listing as CSV with its download filename.
func (s Service) Export(kind string) (string, []byte, error) {
	var data any
	switch kind {
	case "bookings":
		data = s.Source.Bookings()
	case "buses":
		data = s.Source.Buses()
	case "users":
		data = s.Source.Users()
	default:
		return "", nil, domain.ValidationError{Field: "type", Msg: "export type must be bookings, buses or users"}
	}
	out, err := ToCSV(data)
	if err != nil {
		return "", nil, domain.InternalError{Msg: "failed to export " + kind, Err: err}
	}
	return kind + "_export.csv", out, nil
}

// ToCSV writes a slice of records as CSV. The header is the JSON keys of the
// first record in encoding order; nested objects and arrays are written as
// inline JSON. An empty slice gives empty output.
func ToCSV(records any) ([]byte, error) {
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("export: records must be a list: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header, _, err := orderedFields(rows[0])
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		keys, vals, err := orderedFields(row)
		if err != nil {
			return nil, err
		}
		byKey := make(map[string]string, len(keys))
		for i, k := range keys {
			byKey[k] = vals[i]
		}
		rec := make([]string, len(header))
		for i, h := range header {
			rec[i] = byKey[h]
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// orderedFields walks one JSON object and returns its keys in order with
// each value rendered as a cell.
func orderedFields(obj json.RawMessage) ([]string, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("export: record is not an object")
	}

	var keys, vals []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)

		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		vals = append(vals, cell(v))
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, nil, err
	}
	return keys, vals, nil
}

func cell(v json.RawMessage) string {
	s := strings.TrimSpace(string(v))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			return str
		}
	}
	return s
}
