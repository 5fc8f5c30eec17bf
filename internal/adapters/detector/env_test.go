package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/thingsgate/internal/adapters/detector"
	"go.trai.ch/thingsgate/internal/core/domain"
)

func TestDetectEnvironment_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, detector.FormatJSON, detector.DetectEnvironment())
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		flag     string
		detected detector.LogFormat
		want     detector.LogFormat
	}{
		{flag: "", detected: detector.FormatPretty, want: detector.FormatPretty},
		{flag: "auto", detected: detector.FormatJSON, want: detector.FormatJSON},
		{flag: "pretty", detected: detector.FormatJSON, want: detector.FormatPretty},
		{flag: "json", detected: detector.FormatPretty, want: detector.FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, err := detector.ResolveFormat(tt.detected, tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFormat_Invalid(t *testing.T) {
	_, err := detector.ResolveFormat(detector.FormatPretty, "xml")
	assert.ErrorIs(t, err, domain.ErrInvalidParam)
}
