package grapher

import (
	"strings"
	"testing"
)

func TestElideText(t *testing.T) {
	long := strings.Repeat("a", 50) + strings.Repeat("b", 50)
	got := ElideText(long, 80)
	want := strings.Repeat("a", 38) + "...." + strings.Repeat("b", 38)
	if got != want {
		t.Fatalf("ElideText = %q, want %q", got, want)
	}

	if got := ElideText("/tmp/short", 80); got != "/tmp/short" {
		t.Fatalf("short text changed: %q", got)
	}
	exact := strings.Repeat("x", 80)
	if got := ElideText(exact, 80); got != exact {
		t.Fatalf("text at the limit changed")
	}
	// Counts runes, not bytes.
	wide := strings.Repeat("é", 100)
	if n := len([]rune(ElideText(wide, 80))); n != 80 {
		t.Fatalf("elided rune count = %d, want 80", n)
	}
}

func TestTicks(t *testing.T) {
	ticks := Ticks(0, 15)
	if len(ticks) != 16 || ticks[0] != 0 || ticks[15] != 15 {
		t.Fatalf("Ticks(0, 15) = %v", ticks)
	}

	ticks = Ticks(0, 125)
	if len(ticks) != 14 || ticks[1] != 10 || ticks[len(ticks)-1] != 130 {
		t.Fatalf("Ticks(0, 125) = %v", ticks)
	}

	if ticks := Ticks(5, 5); len(ticks) != 1 || ticks[0] != 5 {
		t.Fatalf("degenerate range = %v", ticks)
	}
}
