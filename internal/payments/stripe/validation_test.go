package stripe

import "testing"

func TestIsSecretKey(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"sk_test_abc123", true},
		{"sk_live_abc123", true},
		{"rk_live_abc123", true},
		{"pk_test_abc123", false},
		{"whsec_abc123", false},
		{"", false},
		{"sk_", false},
		{"rk_", false},
		{"  sk_test_abc  ", true},
	}

	for _, tc := range cases {
		if got := IsSecretKey(tc.key); got != tc.want {
			t.Fatalf("IsSecretKey(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestIsTestKey(t *testing.T) {
	if !IsTestKey("sk_test_abc") {
		t.Fatalf("sk_test_ keys are test keys")
	}
	if IsTestKey("sk_live_abc") {
		t.Fatalf("sk_live_ keys are not test keys")
	}
}
