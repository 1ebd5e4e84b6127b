package featureflags

import "testing"

func TestEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"YES", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Setenv("FLAG_DISABLE_CACHE_WARMER", tt.value)
		if got := Enabled("disable_cache_warmer"); got != tt.want {
			t.Fatalf("Enabled with %q = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestEnabledUnset(t *testing.T) {
	if Enabled("no_such_flag") {
		t.Fatalf("unset flag must be off")
	}
}
