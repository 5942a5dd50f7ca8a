package verify

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/shirt-tracker/splitbuild/internal/layout"
)

// Status is the outcome of one check.
type Status int

const (
	StatusPass Status = iota
	StatusFail
	StatusSkip
)

// Label returns the report prefix for s.
func (s Status) Label() string {
	switch s {
	case StatusPass:
		return "[ OK ]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[SKIP]"
	}
}

// Check is one named assertion over a finished build. Run returns nil to
// pass, an error from skip to mark the check not applicable, and any other
// error to fail.
type Check struct {
	Group string
	Name  string
	Run   func(*Env) error
}

// Outcome records the result of one check.
type Outcome struct {
	Group   string
	Check   string
	Status  Status
	Message string
}

// Report collects the outcomes of a run.
type Report struct {
	Outcomes []Outcome
	Passed   int
	Failed   int
	Skipped  int
}

// Failures returns the failed checks in run order.
func (r *Report) Failures() []VerificationFailure {
	var out []VerificationFailure
	for _, o := range r.Outcomes {
		if o.Status == StatusFail {
			out = append(out, VerificationFailure{Group: o.Group, Check: o.Check, Message: o.Message})
		}
	}
	return out
}

// Err returns a *FailedError if any check failed.
func (r *Report) Err() error {
	if r.Failed == 0 {
		return nil
	}
	return &FailedError{Failed: r.Failed, Failures: r.Failures()}
}

// Harness runs a battery of checks over the project at Layout.Root.
type Harness struct {
	Layout layout.Layout
	Checks []Check
	Out    io.Writer
	Logger *zap.Logger
}

// New returns a Harness with the default checks, writing its report to out.
func New(root string, out io.Writer, logger *zap.Logger) *Harness {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harness{
		Layout: layout.New(root),
		Checks: DefaultChecks(),
		Out:    out,
		Logger: logger,
	}
}

// Run executes every check and writes the report.
func (h *Harness) Run() *Report {
	out := h.Out
	if out == nil {
		out = io.Discard
	}
	env := newEnv(h.Layout)
	report := &Report{}

	group := ""
	for _, c := range h.Checks {
		if c.Group != group {
			if group != "" {
				fmt.Fprintln(out)
			}
			group = c.Group
			fmt.Fprintf(out, "%s\n", group)
		}

		o := h.runOne(env, c)
		report.Outcomes = append(report.Outcomes, o)
		switch o.Status {
		case StatusPass:
			report.Passed++
			fmt.Fprintf(out, "  %s %s\n", o.Status.Label(), o.Check)
		case StatusFail:
			report.Failed++
			fmt.Fprintf(out, "  %s %s: %s\n", o.Status.Label(), o.Check, o.Message)
		case StatusSkip:
			report.Skipped++
			fmt.Fprintf(out, "  %s %s (%s)\n", o.Status.Label(), o.Check, o.Message)
		}
	}

	fmt.Fprintln(out)
	if report.Skipped > 0 {
		fmt.Fprintf(out, "%d passed, %d failed, %d skipped\n", report.Passed, report.Failed, report.Skipped)
	} else {
		fmt.Fprintf(out, "%d passed, %d failed\n", report.Passed, report.Failed)
	}
	return report
}

func (h *Harness) runOne(env *Env, c Check) (o Outcome) {
	o = Outcome{Group: c.Group, Check: c.Name, Status: StatusPass}
	defer func() {
		if r := recover(); r != nil {
			h.logger().Error("check panicked", zap.String("check", c.Name), zap.Any("panic", r))
			o.Status = StatusFail
			o.Message = fmt.Sprintf("panic: %v", r)
		}
	}()

	err := c.Run(env)
	if err == nil {
		return o
	}
	if reason, ok := isSkip(err); ok {
		o.Status = StatusSkip
		o.Message = reason
		return o
	}
	o.Status = StatusFail
	o.Message = err.Error()
	return o
}

func (h *Harness) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}
