package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// User-facing output functions with emoji prefixes.
// These write to stdout/stderr directly for CLI output,
// separate from the structured debug logging.

var (
	// Stdout receives info and success messages.
	Stdout io.Writer = os.Stdout

	// Stderr receives warnings, errors and hints.
	Stderr io.Writer = os.Stderr
)

var hintStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("214")).
	Padding(0, 1)

// UserInfo prints an info message to stdout.
func UserInfo(format string, args ...interface{}) {
	fmt.Fprintf(Stdout, "ℹ "+format+"\n", args...)
}

// UserSuccess prints a success message to stdout.
func UserSuccess(format string, args ...interface{}) {
	fmt.Fprintf(Stdout, "✓ "+format+"\n", args...)
}

// UserWarning prints a warning message to stderr.
func UserWarning(format string, args ...interface{}) {
	fmt.Fprintf(Stderr, "⚠ "+format+"\n", args...)
}

// UserError prints an error message to stderr.
func UserError(format string, args ...interface{}) {
	fmt.Fprintf(Stderr, "✗ "+format+"\n", args...)
}

// UserHint prints a boxed remediation hint to stderr.
func UserHint(hint string) {
	if hint == "" {
		return
	}
	fmt.Fprintln(Stderr, hintStyle.Render("To fix this, try:\n\n"+hint))
}

// NextSteps writes the closing message of a successful run.
// When rich is set the message is rendered as terminal markdown.
func NextSteps(w io.Writer, sandboxName, startCommand string, rich bool) error {
	md := nextStepsMarkdown(sandboxName, startCommand)
	if !rich {
		_, err := fmt.Fprint(w, md)
		return err
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render next steps: %w", err)
	}
	_, err = fmt.Fprint(w, out)
	return err
}

func nextStepsMarkdown(sandboxName, startCommand string) string {
	var b strings.Builder
	b.WriteString("\nDone!\n\n")
	fmt.Fprintf(&b, "Now enter the `%s` directory,\n", sandboxName)
	fmt.Fprintf(&b, "run `%s` and enjoy your development sandbox!\n\n", startCommand)
	b.WriteString("Don't forget to fire the development server in your project!\n")
	return b.String()
}
