package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// PagerOptions controls pager behavior
type PagerOptions struct {
	// NoPager disables the pager (--no-pager flag)
	NoPager bool
}

// shouldUsePager determines if output to w should be piped to a pager.
// Only an interactive stdout is paged; files and pipes never are.
func shouldUsePager(w io.Writer, opts PagerOptions) bool {
	if opts.NoPager || os.Getenv("LEADTIME_NO_PAGER") != "" {
		return false
	}
	if f, ok := w.(*os.File); !ok || f != os.Stdout {
		return false
	}
	return IsTerminal()
}

// getPagerCommand returns the pager command to use.
// Checks LEADTIME_PAGER, then PAGER, defaults to "less".
func getPagerCommand() string {
	if pager := os.Getenv("LEADTIME_PAGER"); pager != "" {
		return pager
	}
	if pager := os.Getenv("PAGER"); pager != "" {
		return pager
	}
	return "less"
}

// contentHeight counts the number of lines in the content.
func contentHeight(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(content, "\n"), "\n") + 1
}

// ToPager writes content to w, through a pager when w is an interactive
// stdout and content is taller than the terminal.
func ToPager(w io.Writer, content string, opts PagerOptions) error {
	if !shouldUsePager(w, opts) {
		_, err := fmt.Fprint(w, content)
		return err
	}

	if _, height, err := terminalSize(); err == nil && height > 0 && contentHeight(content) <= height-1 {
		_, err := fmt.Fprint(w, content)
		return err
	}

	// Parse pager command (may include arguments like "less -R")
	parts := strings.Fields(getPagerCommand())
	if len(parts) == 0 {
		_, err := fmt.Fprint(w, content)
		return err
	}

	cmd := exec.Command(parts[0], parts[1:]...) // #nosec G204 - pager command is user-configurable
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// -R: ANSI colors, -F: quit if one screen, -X: keep screen on exit
	cmd.Env = os.Environ()
	if os.Getenv("LESS") == "" {
		cmd.Env = append(cmd.Env, "LESS=-RFX")
	}

	return cmd.Run()
}
