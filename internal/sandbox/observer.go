package sandbox

import (
	"time"

	"github.com/zaguiini/create-sandbox/internal/errors"
	"github.com/zaguiini/create-sandbox/internal/logging"
)

// Observer is notified as the workflow progresses.
// Calls are made from the goroutine running the workflow, one at a time.
type Observer interface {
	StepStarted(step Step)
	StepFinished(step Step, err error)
	Warning(msg string)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) StepStarted(Step)         {}
func (NopObserver) StepFinished(Step, error) {}
func (NopObserver) Warning(string)           {}

// LogObserver reports progress as plain user output lines. It is used when
// stdout is not a terminal.
type LogObserver struct {
	started map[Step]time.Time
}

// NewLogObserver creates a LogObserver.
func NewLogObserver() *LogObserver {
	return &LogObserver{started: make(map[Step]time.Time)}
}

func (o *LogObserver) StepStarted(step Step) {
	o.started[step] = time.Now()
	logging.UserInfo("%s...", step.Title())
}

func (o *LogObserver) StepFinished(step Step, err error) {
	elapsed := time.Since(o.started[step]).Round(time.Millisecond)
	if err != nil {
		logging.Debug("step failed", "step", string(step), "kind", string(errors.KindOf(err)), "elapsed", elapsed)
		return
	}
	logging.UserSuccess("%s (%s)", step.Title(), elapsed)
}

func (o *LogObserver) Warning(msg string) {
	logging.UserWarning("%s", msg)
}
