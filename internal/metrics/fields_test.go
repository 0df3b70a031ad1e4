package metrics

import "testing"

func TestMetricAttributeKeysAreDistinct(t *testing.T) {
	keys := []string{AttrMethod, AttrPath, AttrStatus, AttrEndpoint, AttrReason}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			t.Fatalf("metric attribute key %q is empty or reused", k)
		}
		seen[k] = true
	}
}
