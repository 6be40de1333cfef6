package testutil

import (
	"strings"
	"testing"

	"github.com/specialistvlad/reactbake/internal/app"
	"github.com/stretchr/testify/require"
)

// RequireLayer returns the layer driving property on object, failing the
// test when there is none.
func RequireLayer(t *testing.T, result *HarnessResult, object, property string) app.LayerReport {
	t.Helper()
	require.NoError(t, result.Err)
	for _, l := range result.Report.Layers {
		if l.Object == object && l.Property == property {
			return l
		}
	}
	require.Failf(t, "layer not found", "no layer drives %s:%s", object, property)
	return app.LayerReport{}
}

// StateValues lists the values of a layer's states in order.
func StateValues(l app.LayerReport) []string {
	values := make([]string, 0, len(l.States))
	for _, s := range l.States {
		values = append(values, s.Value)
	}
	return values
}

// AssertValue checks that values holds property on object with the given
// value. Pass Report.Defaults or Report.Baked.
func AssertValue(t *testing.T, values []app.ValueReport, object, property, want string) {
	t.Helper()
	for _, v := range values {
		if v.Object == object && v.Property == property {
			require.Equal(t, want, v.Value, "value of %s:%s", object, property)
			return
		}
	}
	require.Failf(t, "value not found", "%s:%s not in %v", object, property, values)
}

// AssertWarning checks that some warning contains every substring.
func AssertWarning(t *testing.T, result *HarnessResult, substrings ...string) {
	t.Helper()
	require.NoError(t, result.Err)
	for _, w := range result.Report.Warnings {
		matched := true
		for _, s := range substrings {
			if !strings.Contains(w, s) {
				matched = false
				break
			}
		}
		if matched {
			return
		}
	}
	require.Failf(t, "warning not found", "no warning contains %q in %v", substrings, result.Report.Warnings)
}
