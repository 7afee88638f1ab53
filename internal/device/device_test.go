package device

import (
	"context"
	"testing"
)

type fakeProbe struct {
	available bool
	calls     int
}

func (p *fakeProbe) GPUAvailable(context.Context) bool {
	p.calls++
	return p.available
}

func TestSelectTruthTable(t *testing.T) {
	tests := []struct {
		name      string
		requested bool
		available bool
		want      Device
	}{
		{"requested and available", true, true, GPU},
		{"requested but unavailable", true, false, CPU},
		{"available but not requested", false, true, CPU},
		{"neither", false, false, CPU},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			probe := &fakeProbe{available: tc.available}
			if got := Select(context.Background(), tc.requested, probe); got != tc.want {
				t.Fatalf("Select(%v, available=%v) = %s, want %s", tc.requested, tc.available, got, tc.want)
			}
			if !tc.requested && probe.calls != 0 {
				t.Fatalf("probe consulted without a GPU request")
			}
		})
	}
}

func TestSelectNilProbe(t *testing.T) {
	if got := Select(context.Background(), true, nil); got != CPU {
		t.Fatalf("expected CPU with nil probe, got %s", got)
	}
}

func TestUseCUDA(t *testing.T) {
	if !GPU.UseCUDA() || CPU.UseCUDA() {
		t.Fatal("unexpected UseCUDA mapping")
	}
}
