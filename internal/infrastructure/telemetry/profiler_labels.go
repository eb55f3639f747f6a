package telemetry

import (
	"context"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelHandler = "handler"
	ProfilingLabelRoute   = "route"
	ProfilingLabelMethod  = "method"
)

// MaxLabelValueLength bounds a profiling label value
const MaxLabelValueLength = 128

// highCardinalityLabels are dropped; per-request ids explode profile storage
var highCardinalityLabels = map[string]bool{
	"user_id":    true,
	"order_id":   true,
	"product_id": true,
	"request_id": true,
	"trace_id":   true,
	"span_id":    true,
}

// WithProfilingLabels runs fn with pprof labels attached so its samples
// can be filtered in Pyroscope
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// HTTPRequestLabels builds the labels used for a request
func HTTPRequestLabels(handler, route, method string) map[string]string {
	return map[string]string{
		ProfilingLabelHandler: handler,
		ProfilingLabelRoute:   route,
		ProfilingLabelMethod:  method,
	}
}

// sanitizeLabels returns sorted key/value pairs with empty, high-cardinality
// and malformed keys removed
func sanitizeLabels(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		if value == "" || highCardinalityLabels[key] {
			continue
		}
		clean := sanitizeLabelKey(key)
		if clean == "" {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		pairs = append(pairs, clean, value)
	}
	return pairs
}

func sanitizeLabelKey(key string) string {
	key = strings.ToLower(strings.NewReplacer(" ", "_", "-", "_").Replace(key))
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
