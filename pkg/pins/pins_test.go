package pins

import (
	"testing"

	"github.com/stianeikeland/go-rpio/v4"
)

func TestPressed(t *testing.T) {
	tests := []struct {
		level     rpio.State
		activeLow bool
		want      bool
	}{
		{rpio.Low, true, true},
		{rpio.High, true, false},
		{rpio.High, false, true},
		{rpio.Low, false, false},
	}

	for _, tt := range tests {
		if got := pressed(tt.level, tt.activeLow); got != tt.want {
			t.Errorf("pressed(%v, activeLow=%v) = %v, want %v", tt.level, tt.activeLow, got, tt.want)
		}
	}
}
