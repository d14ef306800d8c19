package validation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/carlfranklin/BlobRepositoryDemo/internal/validation"
)

func TestValidateContainerName(t *testing.T) {
	tests := []struct {
		name      string
		container string
		wantErr   bool
	}{
		{"valid simple", "members", false},
		{"valid with hyphen", "member-data", false},
		{"valid with dots", "data.members.prod", false},
		{"valid digits", "members2024", false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 64), true},
		{"uppercase", "Members", true},
		{"leading hyphen", "-members", true},
		{"trailing hyphen", "members-", true},
		{"consecutive dots", "member..data", true},
		{"underscore", "member_data", true},
		{"space", "member data", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateContainerName(tt.container)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContainerName(%q) error = %v, wantErr %v", tt.container, err, tt.wantErr)
			}
		})
	}
}

func TestValidateObjectName(t *testing.T) {
	tests := []struct {
		name    string
		object  string
		wantErr bool
	}{
		{"valid", "Member.json", false},
		{"valid no extension", "records", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"forward slash", "a/b.json", true},
		{"backslash", `a\b.json`, true},
		{"control character", "bad\nname", true},
		{"too long", strings.Repeat("a", 1025), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateObjectName(tt.object)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateObjectName(%q) error = %v, wantErr %v", tt.object, err, tt.wantErr)
			}
		})
	}
}

func TestValidateKeyField(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		wantErr bool
	}{
		{"valid", "id", false},
		{"valid camel", "customerId", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"embedded space", "customer id", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateKeyField(tt.field)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKeyField(%q) error = %v, wantErr %v", tt.field, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilterValue(t *testing.T) {
	strPtr := "hello"
	tests := []struct {
		name    string
		value   interface{}
		wantErr bool
	}{
		{"nil", nil, false},
		{"string", "hello", false},
		{"int", 42, false},
		{"float", 3.14, false},
		{"bool", true, false},
		{"time", time.Now(), false},
		{"string pointer", &strPtr, false},
		{"nil pointer", (*string)(nil), false},
		{"slice", []string{"a"}, true},
		{"map", map[string]int{"a": 1}, true},
		{"struct", struct{ X int }{1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateFilterValue(tt.value, "field")
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilterValue(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}
