// Package prompt is the console boundary of a run: confirmation questions
// and progress output.
package prompt

import (
	"context"
	"io"
	"sync"

	"github.com/pterm/pterm"
)

// Interactive asks the user on the terminal.
type Interactive struct {
	mu      sync.Mutex
	console *Console
}

// NewInteractive returns a terminal confirmer. Answers default to yes so a
// bare enter filters the release out. A running spinner of console is
// stopped before each question.
func NewInteractive(console *Console) *Interactive {
	return &Interactive{console: console}
}

// Confirm shows question and waits for a yes or no.
func (i *Interactive) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.console != nil {
		i.console.Pause()
	}

	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(true).
		Show(question)
}

// AutoConfirmer answers every question the same way. It serves non-interactive
// runs: Answer true filters every flagged release out, false keeps them all.
type AutoConfirmer struct {
	Answer bool
	Asked  []string
}

// Confirm records question and returns the fixed answer.
func (a *AutoConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.Asked = append(a.Asked, question)
	return a.Answer, nil
}

// Console prints stage progress with a spinner.
type Console struct {
	quiet   bool
	plain   bool
	spinner *pterm.SpinnerPrinter
}

// NewConsole returns a Console. A quiet console prints nothing.
func NewConsole(quiet bool) *Console {
	return &Console{quiet: quiet}
}

// NewPlainConsole returns a Console writing unstyled lines to w, one per
// stage, for logs and pipes.
func NewPlainConsole(w io.Writer) *Console {
	pterm.SetDefaultOutput(w)
	pterm.DisableStyling()
	return &Console{plain: true}
}

// Stage starts a new step, finishing the previous one.
func (c *Console) Stage(msg string) {
	if c.quiet {
		return
	}
	c.stop()
	if c.plain {
		pterm.Info.Println(msg)
		return
	}
	c.spinner, _ = pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(msg)
}

// Done marks the current step successful.
func (c *Console) Done(msg string) {
	if c.quiet {
		return
	}
	c.stop()
	pterm.Success.Println(msg)
}

// Warn prints a warning without ending the step.
func (c *Console) Warn(msg string) {
	if c.quiet {
		return
	}
	pterm.Warning.Println(msg)
}

// Fail marks the current step failed.
func (c *Console) Fail(msg string) {
	if c.quiet {
		return
	}
	c.stop()
	pterm.Error.Println(msg)
}

// Pause stops the spinner so an interactive question can use the terminal.
func (c *Console) Pause() {
	c.stop()
}

func (c *Console) stop() {
	if c.spinner != nil {
		_ = c.spinner.Stop()
		c.spinner = nil
	}
}
