package humanfmt

import (
	"testing"
	"time"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KiB"},
		{1536, "1.50 KiB"},
		{5 * MiB, "5.00 MiB"},
		{int64(2.5 * GiB), "2.50 GiB"},
		{3 * TiB, "3.00 TiB"},
		{-1, "-1 B"},
	}
	for _, tt := range tests {
		if got := Bytes(tt.in); got != tt.want {
			t.Errorf("Bytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestThroughput(t *testing.T) {
	if got := Throughput(10*MiB, time.Second); got != "10.00 MiB/s" {
		t.Errorf("Throughput = %q, want 10.00 MiB/s", got)
	}
	if got := Throughput(100, 0); got != "∞" {
		t.Errorf("Throughput with zero duration = %q, want ∞", got)
	}
}
