// Package report renders a MetricsReport for output.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/naka-gawa/community-metrics/internal/domain"
)

// Emitter writes one report in a specific format.
type Emitter interface {
	Emit(w io.Writer, r *domain.MetricsReport) error
}

var emitters = map[string]func() Emitter{
	"text":       func() Emitter { return TextEmitter{} },
	"json":       func() Emitter { return JSONEmitter{} },
	"yaml":       func() Emitter { return YAMLEmitter{} },
	"prometheus": func() Emitter { return PrometheusEmitter{} },
}

// Formats lists the accepted format names in sorted order.
func Formats() []string {
	names := make([]string, 0, len(emitters))
	for name := range emitters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the emitter for a format name.
func New(format string) (Emitter, error) {
	ctor, ok := emitters[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (valid: %s)", format, strings.Join(Formats(), ", "))
	}
	return ctor(), nil
}
