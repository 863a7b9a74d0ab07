// AngelaMos | 2026
// checker.go

package health

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const (
	StatusOK          = "ok"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
)

// Check is one dependency probe. A failing check that is not Critical is
// reported but leaves the overall status degraded rather than unavailable.
type Check struct {
	Name     string
	Ping     func(ctx context.Context) error
	Critical bool
}

type Result struct {
	Name     string `json:"name"`
	Healthy  bool   `json:"healthy"`
	Critical bool   `json:"critical"`
	Latency  string `json:"latency,omitempty"`
	Message  string `json:"message,omitempty"`
}

type Report struct {
	Status string   `json:"status"`
	Checks []Result `json:"checks"`
}

func (r Report) HTTPStatus() int {
	if r.Status == StatusUnavailable {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// Result looks up a single probe by name.
func (r Report) Result(name string) (Result, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Result{}, false
}

type Checker struct {
	checks  []Check
	timeout time.Duration
}

func NewChecker(timeout time.Duration, checks ...Check) *Checker {
	return &Checker{checks: checks, timeout: timeout}
}

// Run probes every check concurrently under one shared deadline.
func (c *Checker) Run(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results := make([]Result, len(c.checks))
	var wg sync.WaitGroup
	for i, check := range c.checks {
		wg.Go(func() {
			results[i] = probe(ctx, check)
		})
	}
	wg.Wait()

	report := Report{Status: StatusOK, Checks: results}
	for _, res := range results {
		switch {
		case res.Healthy:
		case res.Critical:
			report.Status = StatusUnavailable
			return report
		default:
			report.Status = StatusDegraded
		}
	}
	return report
}

func probe(ctx context.Context, c Check) Result {
	res := Result{Name: c.Name, Critical: c.Critical}

	if c.Ping == nil {
		res.Message = "checker not configured"
		return res
	}

	start := time.Now()
	err := c.Ping(ctx)
	res.Latency = time.Since(start).Round(time.Microsecond).String()

	switch {
	case err == nil:
		res.Healthy = true
	case c.Critical:
		// infrastructure errors can carry hostnames
		res.Message = "ping failed"
	default:
		res.Message = err.Error()
	}
	return res
}
