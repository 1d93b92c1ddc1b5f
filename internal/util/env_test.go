package util

import "testing"

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_ENV_STRING", "set")

	if got := GetEnvString("TEST_ENV_STRING", "fallback"); got != "set" {
		t.Fatalf("GetEnvString() = %q, want %q", got, "set")
	}
	if got := GetEnvString("TEST_ENV_STRING_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("GetEnvString() = %q, want %q", got, "fallback")
	}
}

func TestGetEnvNumeric(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  float64
	}{
		{name: "parses integer", value: "15", set: true, want: 15},
		{name: "parses float", value: "0.5", set: true, want: 0.5},
		{name: "garbage falls back", value: "ten", set: true, want: 7},
		{name: "missing falls back", set: false, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("TEST_ENV_NUMERIC", tt.value)
			}
			if got := GetEnvNumeric("TEST_ENV_NUMERIC", 7); got != tt.want {
				t.Fatalf("GetEnvNumeric() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		set      bool
		fallback bool
		want     bool
	}{
		{name: "true", value: "true", set: true, fallback: false, want: true},
		{name: "false", value: "false", set: true, fallback: true, want: false},
		{name: "garbage falls back", value: "yes", set: true, fallback: true, want: true},
		{name: "missing falls back", set: false, fallback: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("TEST_ENV_BOOL", tt.value)
			}
			if got := GetEnvBool("TEST_ENV_BOOL", tt.fallback); got != tt.want {
				t.Fatalf("GetEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}
