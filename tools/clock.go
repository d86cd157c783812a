package tools

import (
	"context"

	"github.com/rickchristie/reloop"
	"github.com/rickchristie/reloop/schema"
)

// ClockLayout is the layout of the time returned by get_current_time, e.g.
// "Tue Mar 05 2024 14:03:09 GMT+0100 (CET)".
const ClockLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

// Clock is the get_current_time tool.
type Clock struct {
	timeProvider reloop.TimeProvider
}

// NewClock creates a Clock reading the system clock.
func NewClock() *Clock {
	return &Clock{timeProvider: reloop.NewDefaultTimeProvider()}
}

// WithTimeProvider sets the time source.
func (c *Clock) WithTimeProvider(tp reloop.TimeProvider) *Clock {
	c.timeProvider = tp
	return c
}

func (c *Clock) Name() string {
	return "get_current_time"
}

func (c *Clock) Description() string {
	return "Get the current time. This function has no additional arguments"
}

func (c *Clock) ParameterSchema() map[string]any {
	return schema.NoArguments()
}

// Call returns the current local time formatted with ClockLayout.
func (c *Clock) Call(_ context.Context, _ map[string]any) (reloop.ToolResult, error) {
	return c.timeProvider.Now().Format(ClockLayout), nil
}

var _ reloop.Tool = (*Clock)(nil)
