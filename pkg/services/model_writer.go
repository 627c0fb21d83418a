package services

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/ekaya-modeler/pkg/apperrors"
)

// Output formats accepted by WriteModel.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// WriteModel encodes v (a model or a full result) to w in the given format.
func WriteModel(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case FormatYAML, "yml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, format)
	}
}
