package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   bool
		want  bool
	}{
		{"unset uses default true", "", true, true},
		{"unset uses default false", "", false, false},
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"yes uppercase", "YES", false, true},
		{"on with spaces", " on ", false, true},
		{"false", "false", true, false},
		{"zero", "0", true, false},
		{"no", "no", true, false},
		{"off", "off", true, false},
		{"garbage uses default", "maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const key = "NUTRITIONLM_TEST_BOOL"
			if tt.value != "" {
				t.Setenv(key, tt.value)
			}
			if got := ParseBoolEnv(key, tt.def); got != tt.want {
				t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
			}
		})
	}
}
