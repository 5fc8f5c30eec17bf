// Package detector picks the log format from the environment.
package detector

import (
	"os"

	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// LogFormat is the rendering mode of log lines.
type LogFormat int

const (
	// FormatAuto defers to DetectEnvironment.
	FormatAuto LogFormat = iota
	// FormatPretty renders colored lines for humans.
	FormatPretty
	// FormatJSON renders one JSON object per line.
	FormatJSON
)

// DetectEnvironment returns FormatJSON when stderr is not a terminal or CI is set.
func DetectEnvironment() LogFormat {
	isTTY := term.IsTerminal(int(os.Stderr.Fd())) //nolint:gosec // G115: fd fits in int

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return FormatJSON
	}
	return FormatPretty
}

// ResolveFormat applies the --log-format flag to the detected format.
func ResolveFormat(detected LogFormat, flag string) (LogFormat, error) {
	switch flag {
	case "pretty":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	case "auto", "":
		return detected, nil
	default:
		return FormatAuto, zerr.With(zerr.Wrap(domain.ErrInvalidParam, "log format must be auto, pretty or json"),
			"log_format", flag)
	}
}
