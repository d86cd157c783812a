package tt

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// AssertTextEqual asserts that two multi-line texts are identical. On mismatch it reports a
// unified diff, which is far easier to read than a quoted string for rendered prompts.
func AssertTextEqual(t *testing.T, expected, actual string) bool {
	t.Helper()

	if expected == actual {
		return true
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		t.Errorf("text mismatch (diff failed: %v)\nexpected:\n%s\nactual:\n%s", err, expected, actual)
		return false
	}
	t.Errorf("text mismatch:\n%s", diff)
	return false
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
