package media

import (
	"testing"
)

func TestProgressFraction(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		total float64
		want  float64
	}{
		{"halfway", "out_time_us=5000000", 10.0, 0.5},
		{"complete", "out_time_us=10000000", 10.0, 1.0},
		{"overshoot_clamped", "out_time_us=12500000", 10.0, 1.0},
		{"start", "out_time_us=0", 10.0, 0.0},
		{"trailing_whitespace", "out_time_us=5000000 ", 10.0, 0.5},
		{"other_progress_key", "frame=250", 10.0, -1},
		{"progress_end_marker", "progress=end", 10.0, -1},
		{"not_a_number", "out_time_us=N/A", 10.0, -1},
		{"negative_time", "out_time_us=-9223372036854775808", 10.0, -1},
		{"unknown_total", "out_time_us=5000000", 0, -1},
		{"empty_line", "", 10.0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := progressFraction(tt.line, tt.total)
			if got != tt.want {
				t.Errorf("progressFraction(%q, %v) = %v, want %v", tt.line, tt.total, got, tt.want)
			}
		})
	}
}
