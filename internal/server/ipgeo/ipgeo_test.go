package ipgeo

import "testing"

func TestCountryCodeWithoutDatabase(t *testing.T) {
	// Local IPs are classified before the MMDB reader is consulted, so a
	// nil Checker covers them.
	var c *Checker
	tests := []struct {
		ip   string
		want string
	}{
		{"127.0.0.1", "local"},
		{"::1", "local"},
		{"10.0.0.1", "local"},
		{"192.168.1.1", "local"},
		{"172.16.0.1", "local"},
		{"0.0.0.0", "local"},
		{"::", "local"},
		{"169.254.1.1", "local"},
		{"fe80::1", "local"},
		{"8.8.8.8", ""}, // public, but no database loaded
		{"not-an-ip", ""},
	}
	for _, tt := range tests {
		if got := c.CountryCode(tt.ip); got != tt.want {
			t.Errorf("CountryCode(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}
}
