package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// renderRecords writes a record slice in the requested format.
func renderRecords(w io.Writer, records []map[string]any, format, keyField string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		return renderTable(w, records, keyField)
	default:
		return fmt.Errorf("unknown output format %q, want table, json or yaml", format)
	}
}

// renderRecord writes a single record; json and yaml emit the bare
// object rather than a one-element array.
func renderRecord(w io.Writer, rec map[string]any, format, keyField string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(rec); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderRecords(w, []map[string]any{rec}, format, keyField)
	}
}

func renderTable(w io.Writer, records []map[string]any, keyField string) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no records")
		return err
	}

	cols := tableColumns(records, keyField)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = strings.ToUpper(c)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, rec := range records {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = cellString(rec[c])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// tableColumns is the sorted union of field names across the records,
// with the identity field first.
func tableColumns(records []map[string]any, keyField string) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)

	for i := range cols {
		if cols[i] == keyField {
			copy(cols[1:i+1], cols[:i])
			cols[0] = keyField
			break
		}
	}
	return cols
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}
