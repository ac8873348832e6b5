package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// Report is the rendered outcome of an aggregate run.
type Report struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Checks    []CheckReport `json:"checks,omitempty"`
}

// CheckReport is the rendered outcome of a single check.
type CheckReport struct {
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Report runs every registered check and renders the results sorted by
// checker name. It returns ErrNoCheckers when nothing is registered.
func (a *Aggregator) Report(ctx context.Context) (Report, Status, error) {
	if len(a.CheckerNames()) == 0 {
		return Report{}, StatusUnhealthy, ErrNoCheckers
	}

	results := a.CheckAll(ctx)
	status := a.OverallStatus(results)
	return NewReport(results, status), status, nil
}

// NewReport renders results under the given overall status.
func NewReport(results map[string]Result, status Status) Report {
	report := Report{
		Status:    status.String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make([]CheckReport, 0, len(results)),
	}

	for name, result := range results {
		check := CheckReport{
			Name:     name,
			Status:   result.Status.String(),
			Message:  result.Message,
			Duration: result.Duration.String(),
			Details:  result.Details,
		}
		if result.Error != nil {
			check.Error = result.Error.Error()
		}
		report.Checks = append(report.Checks, check)
	}
	sort.Slice(report.Checks, func(i, j int) bool {
		return report.Checks[i].Name < report.Checks[j].Name
	})

	return report
}

// WriteText writes one line per check followed by the overall status.
func (r Report) WriteText(w io.Writer) error {
	for _, c := range r.Checks {
		line := fmt.Sprintf("%-24s %-9s %s", c.Name, c.Status, c.Message)
		if c.Error != "" {
			line += " (" + c.Error + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "overall: %s\n", r.Status)
	return err
}

// WriteJSON writes the report as a single JSON document.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
