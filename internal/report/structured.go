package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/naka-gawa/community-metrics/internal/domain"
)

// JSONEmitter writes the report as indented JSON. No-data values are null.
type JSONEmitter struct{}

func (JSONEmitter) Emit(w io.Writer, r *domain.MetricsReport) error {
	jsonData, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// YAMLEmitter writes the report as YAML. No-data values are null.
type YAMLEmitter struct{}

func (YAMLEmitter) Emit(w io.Writer, r *domain.MetricsReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to marshal report to YAML: %w", err)
	}
	return enc.Close()
}
