package ui

import "testing"

// go test never runs with stdout attached to a terminal, so the TTY
// fallback is false throughout.
func TestShouldUseColor(t *testing.T) {
	tests := []struct {
		name                     string
		noColor, clicolor, force string
		want                     bool
	}{
		{"no overrides", "", "", "", false},
		{"NO_COLOR", "1", "", "", false},
		{"CLICOLOR=0", "", "0", "", false},
		{"CLICOLOR=1 still needs a terminal", "", "1", "", false},
		{"CLICOLOR_FORCE", "", "", "1", true},
		{"CLICOLOR_FORCE=0 is off", "", "", "0", false},
		{"CLICOLOR=0 beats force", "", "0", "1", false},
		{"NO_COLOR beats force", "1", "", "1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("CLICOLOR", tt.clicolor)
			t.Setenv("CLICOLOR_FORCE", tt.force)
			if got := ShouldUseColor(); got != tt.want {
				t.Errorf("ShouldUseColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldUseIconsAndWidth(t *testing.T) {
	t.Setenv("LEADTIME_NO_ICONS", "1")
	if ShouldUseIcons() {
		t.Error("ShouldUseIcons() = true with LEADTIME_NO_ICONS set")
	}
	t.Setenv("LEADTIME_NO_ICONS", "")
	if ShouldUseIcons() != IsTerminal() {
		t.Error("ShouldUseIcons() should follow IsTerminal() without LEADTIME_NO_ICONS")
	}

	if IsTerminal() {
		t.Skip("stdout is a terminal")
	}
	if got := TerminalWidth(72); got != 72 {
		t.Errorf("TerminalWidth(72) = %d, want the fallback", got)
	}
}
