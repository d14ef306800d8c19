package main

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func sampleRecords() []map[string]any {
	return []map[string]any{
		{"id": "1", "firstName": "Carl", "lastName": "Franklin", "age": float64(55)},
		{"id": "2", "firstName": "Ada", "lastName": "Lovelace", "age": float64(36), "active": true},
	}
}

func TestTableColumns(t *testing.T) {
	cols := tableColumns(sampleRecords(), "id")
	want := []string{"id", "active", "age", "firstName", "lastName"}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("expected columns %v, got %v", want, cols)
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	if err := renderTable(&buf, sampleRecords(), "id"); err != nil {
		t.Fatalf("failed to render table: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID") {
		t.Errorf("expected identity column first in header, got %q", lines[0])
	}
	for _, want := range []string{"FIRSTNAME", "Carl", "Lovelace", "55", "true"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := renderTable(&buf, nil, "id"); err != nil {
		t.Fatalf("failed to render empty table: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "no records" {
		t.Errorf("expected placeholder for empty table, got %q", got)
	}
}

func TestRenderRecordsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := renderRecords(&buf, []map[string]any{}, "json", "id"); err != nil {
		t.Fatalf("failed to render json: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("expected empty array, got %q", got)
	}

	buf.Reset()
	if err := renderRecords(&buf, sampleRecords(), "json", "id"); err != nil {
		t.Fatalf("failed to render json: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[0]["firstName"] != "Carl" {
		t.Errorf("unexpected decoded output: %+v", decoded)
	}
}

func TestRenderRecordsYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := renderRecords(&buf, sampleRecords(), "yaml", "id"); err != nil {
		t.Fatalf("failed to render yaml: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"firstName: Carl", "lastName: Lovelace"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestRenderRecordsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := renderRecords(&buf, sampleRecords(), "csv", "id")
	if err == nil {
		t.Fatal("expected error for unknown format, got nil")
	}
	if !strings.Contains(err.Error(), "csv") {
		t.Errorf("expected error to name the format, got %q", err.Error())
	}
}

func TestRenderRecordObject(t *testing.T) {
	var buf bytes.Buffer
	rec := sampleRecords()[0]
	if err := renderRecord(&buf, rec, "json", "id"); err != nil {
		t.Fatalf("failed to render record: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected a bare JSON object: %v", err)
	}
	if decoded["id"] != "1" {
		t.Errorf("unexpected decoded record: %+v", decoded)
	}
}

func TestCellString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "Carl", want: "Carl"},
		{name: "number", in: float64(55), want: "55"},
		{name: "bool", in: true, want: "true"},
		{name: "nested map", in: map[string]any{"city": "Boston"}, want: `{"city":"Boston"}`},
		{name: "nested slice", in: []any{"a", "b"}, want: `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cellString(tt.in); got != tt.want {
				t.Errorf("cellString(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
