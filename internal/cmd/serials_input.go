package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/warrantylens/warrantylens/internal/core/serial"
)

// resolveSerials gathers raw serial input from positional args or a file
// ("-" reads stdin), normalizes it, and reports invalid and duplicate tokens
// to the operator before the batch starts.
func resolveSerials(positional []string, serialsFile string, errOut io.Writer) ([]string, error) {
	trimmed := strings.TrimSpace(serialsFile)
	if trimmed != "" && len(positional) > 0 {
		return nil, fmt.Errorf("cannot combine positional serials with --serials-file")
	}

	var raw string
	if trimmed != "" {
		text, err := readSerialsFile(trimmed)
		if err != nil {
			return nil, err
		}
		raw = text
	} else {
		raw = strings.Join(positional, "\n")
	}

	report := serial.Normalize(raw)

	if len(report.Invalid) > 0 {
		fmt.Fprintf(errOut, "warning: %d invalid serial(s): %s\n",
			len(report.Invalid), strings.Join(report.Invalid, ", "))
	}
	if len(report.Duplicates) > 0 {
		fmt.Fprintf(errOut, "warning: %d duplicate serial(s): %s\n",
			len(report.Duplicates), strings.Join(report.Duplicates, ", "))
	}

	if len(report.Serials) == 0 {
		return nil, fmt.Errorf("no valid serials in input")
	}

	return report.Serials, nil
}

func readSerialsFile(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read serials file: %w", err)
	}
	return string(data), nil
}
