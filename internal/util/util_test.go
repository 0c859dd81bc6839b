package util

import (
	"strings"
	"testing"
)

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"No", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, true},
		{"maybe", false, false},
		{" true ", false, true},
	}
	for _, tc := range cases {
		t.Setenv("CAREPATH_TEST_BOOL", tc.value)
		if got := ParseBoolEnv("CAREPATH_TEST_BOOL", tc.def); got != tc.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tc.value, tc.def, got, tc.want)
		}
	}
}

func TestEnvWithDefault(t *testing.T) {
	t.Setenv("CAREPATH_TEST_STR", "")
	if got := EnvWithDefault("CAREPATH_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("expected fallback for unset var, got %q", got)
	}
	t.Setenv("CAREPATH_TEST_STR", "  ")
	if got := EnvWithDefault("CAREPATH_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("expected fallback for blank var, got %q", got)
	}
	t.Setenv("CAREPATH_TEST_STR", "value")
	if got := EnvWithDefault("CAREPATH_TEST_STR", "fallback"); got != "value" {
		t.Errorf("expected set value, got %q", got)
	}
}

func TestNewIDSource(t *testing.T) {
	ids := NewIDSource("cp_")
	a, b := ids(), ids()
	if !strings.HasPrefix(a, "cp_") || !strings.HasPrefix(b, "cp_") {
		t.Errorf("missing prefix: %q, %q", a, b)
	}
	if a == b {
		t.Error("consecutive ids collide")
	}
}

func TestSequentialIDSource(t *testing.T) {
	ids := SequentialIDSource("id")
	if got := ids(); got != "id1" {
		t.Errorf("expected id1, got %q", got)
	}
	if got := ids(); got != "id2" {
		t.Errorf("expected id2, got %q", got)
	}
	// Independent sources restart their counters.
	other := SequentialIDSource("id")
	if got := other(); got != "id1" {
		t.Errorf("expected independent counter, got %q", got)
	}
}
