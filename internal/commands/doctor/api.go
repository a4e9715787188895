package doctor

import (
	"context"
	"time"

	"github.com/hay-kot/shopcart/internal/api"
)

// Pinger calls the API health endpoint.
type Pinger interface {
	Ping(ctx context.Context) (api.Health, error)
}

// APICheck verifies the storefront API answers its health check.
type APICheck struct {
	baseURL string
	pinger  Pinger
	timeout time.Duration
}

// NewAPICheck creates an API reachability check.
func NewAPICheck(baseURL string, pinger Pinger, timeout time.Duration) *APICheck {
	return &APICheck{baseURL: baseURL, pinger: pinger, timeout: timeout}
}

func (c *APICheck) Name() string {
	return "API"
}

func (c *APICheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	health, err := c.pinger.Ping(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Reachable",
			Status: StatusFail,
			Detail: c.baseURL + ": " + err.Error(),
		})
		return result
	}

	item := CheckItem{
		Label:  "Reachable",
		Status: StatusPass,
		Detail: c.baseURL + " (" + time.Since(start).Round(time.Millisecond).String() + ")",
	}
	if !health.OK {
		item.Status = StatusWarn
		item.Detail = c.baseURL + " answered but did not report ok"
	}
	result.Items = append(result.Items, item)

	if health.Service != "" {
		result.Items = append(result.Items, CheckItem{Label: "Service", Status: StatusPass, Detail: health.Service})
	}
	return result
}
