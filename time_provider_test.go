package reloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTimeProvider_Now(t *testing.T) {
	tp := NewDefaultTimeProvider()

	before := time.Now()
	result := tp.Now()
	after := time.Now()

	assert.False(t, result.Before(before), "Now() returned time before the call")
	assert.False(t, result.After(after), "Now() returned time after the call")
}

func TestDefaultTimeProvider_Today(t *testing.T) {
	tp := NewDefaultTimeProvider()

	before := time.Now().Format("2006-01-02")
	result := tp.Today()
	after := time.Now().Format("2006-01-02")

	// Allow for midnight rollover
	assert.Contains(t, []string{before, after}, result)
}

func TestMockTimeProvider(t *testing.T) {
	fixed := time.Date(2025, 2, 15, 14, 30, 0, 0, time.UTC)

	type input struct {
		call func(tp *MockTimeProvider) string
	}

	type expected struct {
		output string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "today",
			input:    input{call: func(tp *MockTimeProvider) string { return tp.Today() }},
			expected: expected{output: "2025-02-15"},
		},
		{
			name:     "weekday",
			input:    input{call: func(tp *MockTimeProvider) string { return tp.Weekday() }},
			expected: expected{output: "Saturday"},
		},
		{
			name: "format",
			input: input{call: func(tp *MockTimeProvider) string {
				return tp.Format("Mon Jan 02 2006 15:04:05")
			}},
			expected: expected{output: "Sat Feb 15 2025 14:30:00"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tp := NewMockTimeProvider(fixed)
			assert.Equal(t, tc.expected.output, tc.input.call(tp))
		})
	}
}

func TestMockTimeProvider_SetTime(t *testing.T) {
	tp := NewMockTimeProvider(time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC))
	tp.SetTime(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "2026-01-01", tp.Today())
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), tp.Now())
}

func TestMockTimeProvider_Advance(t *testing.T) {
	tp := NewMockTimeProvider(time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC))
	tp.Advance(45 * time.Minute)

	assert.Equal(t, "2024-03-06", tp.Today())
	assert.Equal(t, "Wednesday", tp.Weekday())
	assert.Equal(t, "00:15", tp.Format("15:04"))
}

func TestMockTimeProvider_KeepsLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	tp := NewMockTimeProvider(time.Date(2024, 3, 5, 14, 3, 9, 0, tokyo))

	assert.Equal(t, "14:03 JST +0900", tp.Format("15:04 MST -0700"))
	assert.Equal(t, tokyo, tp.Now().Location())
}
