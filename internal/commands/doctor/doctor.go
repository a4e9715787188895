// Package doctor runs diagnostic checks over a shopcart installation.
package doctor

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Status is the outcome of one checked item. Higher is worse.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name in JSON reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckItem is one line of a check's result.
type CheckItem struct {
	Label   string `json:"label"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Fixable bool   `json:"fixable,omitempty"`
}

// Result groups the items reported by one check.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

// Status returns the worst status among the items.
func (r Result) Status() Status {
	worst := StatusPass
	for _, item := range r.Items {
		worst = max(worst, item.Status)
	}
	return worst
}

// Check is a single diagnostic.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// RunAll runs the checks concurrently and returns their results in the order
// the checks were given.
func RunAll(ctx context.Context, checks []Check) []Result {
	results := make([]Result, len(checks))

	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() error {
			results[i] = check.Run(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Summary counts items by status across all results.
func Summary(results []Result) (passed, warned, failed int) {
	for _, item := range allItems(results) {
		switch item.Status {
		case StatusPass:
			passed++
		case StatusWarn:
			warned++
		case StatusFail:
			failed++
		}
	}
	return passed, warned, failed
}

// CountFixable returns how many failing or warning items --fix can repair.
func CountFixable(results []Result) int {
	return len(slices.DeleteFunc(allItems(results), func(item CheckItem) bool {
		return !item.Fixable || item.Status == StatusPass
	}))
}

func allItems(results []Result) []CheckItem {
	var items []CheckItem
	for _, r := range results {
		items = append(items, r.Items...)
	}
	return items
}
