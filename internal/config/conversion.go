package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/pkg/export"
)

// PlanInput converts the plan section into a calculation input, resolving a
// missing start date against now.
func (c *Configuration) PlanInput(now time.Time) schedule.Input {
	return c.Plan.ToInputWithFixedTime(now)
}

// ExportTimeout parses export.timeout; an empty value means the renderer
// default.
func (c *Configuration) ExportTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.Export.Timeout)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid export timeout %q: %w", c.Export.Timeout, err)
	}
	return d, nil
}

// ExportOptions converts the export section into renderer options.
func (c *Configuration) ExportOptions() (export.Options, error) {
	timeout, err := c.ExportTimeout()
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{
		Renderer:   c.Export.Renderer,
		Scale:      c.Export.Scale,
		ChromePath: c.Export.ChromePath,
		Timeout:    timeout,
	}, nil
}
