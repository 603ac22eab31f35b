package api

import "testing"

func TestParseRateLimitHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   RateLimit
	}{
		{
			name:   "full dictionary",
			header: "limit=100, remaining=0, reset=30",
			want:   RateLimit{Limit: 100, Remaining: 0, Reset: 30},
		},
		{
			name:   "reset only",
			header: "reset=12",
			want:   RateLimit{Reset: 12},
		},
		{
			name:   "unknown keys ignored",
			header: "limit=50, policy=\"sliding\", reset=5",
			want:   RateLimit{Limit: 50, Reset: 5},
		},
		{
			name:   "empty header",
			header: "",
			want:   RateLimit{},
		},
		{
			name:   "malformed header",
			header: "limit=;;;",
			want:   RateLimit{},
		},
		{
			name:   "non-integer values ignored",
			header: "limit=\"lots\", reset=9",
			want:   RateLimit{Reset: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRateLimitHeader(tt.header)
			if got != tt.want {
				t.Errorf("ParseRateLimitHeader(%q) = %+v, want %+v", tt.header, got, tt.want)
			}
		})
	}
}
