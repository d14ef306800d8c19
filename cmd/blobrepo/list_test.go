package main

import (
	"reflect"
	"testing"

	"github.com/carlfranklin/BlobRepositoryDemo/query"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    query.Filter
		wantErr bool
	}{
		{
			name: "numeric value",
			raw:  "age:gte:40",
			want: query.Filter{Field: "age", Op: query.OpGte, Value: float64(40)},
		},
		{
			name: "boolean value",
			raw:  "active:eq:true",
			want: query.Filter{Field: "active", Op: query.OpEq, Value: true},
		},
		{
			name: "bare string value",
			raw:  "lastName:eq:Franklin",
			want: query.Filter{Field: "lastName", Op: query.OpEq, Value: "Franklin"},
		},
		{
			name: "quoted value stays a string",
			raw:  `id:eq:"42"`,
			want: query.Filter{Field: "id", Op: query.OpEq, Value: "42"},
		},
		{
			name: "value containing colons",
			raw:  "email:contains:mailto:carl",
			want: query.Filter{Field: "email", Op: query.OpContains, Value: "mailto:carl"},
		},
		{
			name:    "missing op and value",
			raw:     "age",
			wantErr: true,
		},
		{
			name:    "unknown operator",
			raw:     "age:between:40",
			wantErr: true,
		},
		{
			name:    "array value rejected",
			raw:     "age:eq:[40,50]",
			wantErr: true,
		},
		{
			name:    "empty field",
			raw:     ":eq:40",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFilter(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error parsing %q, got %+v", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("failed to parse %q: %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parsed %q as %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    query.OrderClause
		wantErr bool
	}{
		{
			name: "ascending by default",
			raw:  "age",
			want: query.OrderClause{Field: "age"},
		},
		{
			name: "explicit ascending",
			raw:  "age:asc",
			want: query.OrderClause{Field: "age"},
		},
		{
			name: "descending",
			raw:  "age:desc",
			want: query.OrderClause{Field: "age", Descending: true},
		},
		{
			name: "direction is case insensitive",
			raw:  "age:DESC",
			want: query.OrderClause{Field: "age", Descending: true},
		},
		{
			name:    "empty field",
			raw:     ":desc",
			wantErr: true,
		},
		{
			name:    "unknown direction",
			raw:     "age:sideways",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOrder(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error parsing %q, got %+v", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("failed to parse %q: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("parsed %q as %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}
