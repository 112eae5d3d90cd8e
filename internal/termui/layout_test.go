package termui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestFitLinesPadsAndCuts(t *testing.T) {
	out := FitLines("ab\ncdef\ng", 5, 2)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for _, l := range lines {
		if lipgloss.Width(l) != 5 {
			t.Fatalf("expected width 5, got %q", l)
		}
	}

	out = FitLines("x", 3, 3)
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected filler lines, got %q", out)
	}
}

func TestTruncateLine(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"Connection successful", 10, "Connect..."},
		{"abcdef", 3, "abc"},
		{"abcdef", 0, "abcdef"},
	}
	for _, tc := range cases {
		if got := TruncateLine(tc.in, tc.width); got != tc.want {
			t.Fatalf("TruncateLine(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestBadgeText(t *testing.T) {
	if !strings.Contains(Badge(true), ConnectedText) {
		t.Fatalf("connected badge missing text")
	}
	if !strings.Contains(Badge(false), DisconnectedText) {
		t.Fatalf("disconnected badge missing text")
	}
}

func TestTabsMarksActive(t *testing.T) {
	out := Tabs([]string{"Control", "Metrics"}, 1)
	if !strings.Contains(out, "Control") || !strings.Contains(out, "Metrics") {
		t.Fatalf("tabs missing names: %q", out)
	}
	if lipgloss.Height(out) != TabsHeight() {
		t.Fatalf("unexpected tab height %d", lipgloss.Height(out))
	}
}
