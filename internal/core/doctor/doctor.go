// Package doctor provides health checks for a walkthrough deployment.
package doctor

import "context"

// Status is the outcome of one check item.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// CheckItem is a single line of a check result.
type CheckItem struct {
	Label  string `json:"label"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Result groups the items reported by one check.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

// Check is a single health check.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// Counts tallies item statuses across results.
type Counts struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

// Healthy reports whether no item failed. Warnings are allowed.
func (c Counts) Healthy() bool { return c.Failed == 0 }

// Report is the outcome of a doctor run.
type Report struct {
	Healthy bool     `json:"healthy"`
	Summary Counts   `json:"summary"`
	Checks  []Result `json:"checks"`
}

// Run executes checks in order and tallies their items.
func Run(ctx context.Context, checks ...Check) Report {
	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		results = append(results, check.Run(ctx))
	}

	counts := Tally(results)
	return Report{Healthy: counts.Healthy(), Summary: counts, Checks: results}
}

// Tally counts the items of results by status.
func Tally(results []Result) Counts {
	var c Counts
	for _, r := range results {
		for _, item := range r.Items {
			switch item.Status {
			case StatusPass:
				c.Passed++
			case StatusWarn:
				c.Warned++
			case StatusFail:
				c.Failed++
			}
		}
	}
	return c
}
