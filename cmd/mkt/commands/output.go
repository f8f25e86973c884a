package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	"github.com/fivetwenty-io/marketplace-sdk/internal/marshal"
	"gopkg.in/yaml.v3"
)

// writeStructured writes v as JSON or YAML. It reports false for any other
// format so the caller can render a table.
func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		err := encoder.Encode(v)
		if err != nil {
			return true, fmt.Errorf("encoding to JSON: %w", err)
		}

		return true, nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(constants.JSONIndentSize)

		err := encoder.Encode(v)
		if err != nil {
			return true, fmt.Errorf("failed to encode as YAML: %w", err)
		}

		return true, encoder.Close()
	default:
		return false, nil
	}
}

// plainData converts decoded response data, which may hold rich values,
// into a tree JSON and YAML encoders render faithfully.
func plainData(data any) (any, error) {
	plain, err := marshal.New(nil).TypeToData(data)
	if err != nil {
		return nil, fmt.Errorf("converting response data: %w", err)
	}

	return plain, nil
}

// writeData renders response data. Tables are not meaningful for arbitrary
// trees, so the table format falls back to JSON.
func writeData(w io.Writer, format string, data any) error {
	plain, err := plainData(data)
	if err != nil {
		return err
	}

	if format != constants.FormatYAML {
		format = constants.FormatJSON
	}

	_, err = writeStructured(w, format, plain)

	return err
}

// maskToken shortens a credential for display.
func maskToken(token string) string {
	if token == "" {
		return constants.None
	}

	if len(token) <= constants.TokenDisplayLength {
		return constants.MaskedSecret
	}

	return token[:constants.TokenDisplayLength] + "..."
}
