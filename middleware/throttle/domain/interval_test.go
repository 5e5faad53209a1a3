package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"+1 minute", time.Minute},
		{"1 minute", time.Minute},
		{"+30 seconds", 30 * time.Second},
		{"+2 hours", 2 * time.Hour},
		{"+1 hour 30 mins", 90 * time.Minute},
		{"+1 day", 24 * time.Hour},
		{"1 week", 7 * 24 * time.Hour},
		{"  +1 Minute ", time.Minute},
		{"90s", 90 * time.Second},
		{"1m", time.Minute},
		{"15", 15 * time.Second},
		{"+15000 weeks", 15000 * 7 * 24 * time.Hour},
	}

	for _, tc := range cases {
		got, err := ParseInterval(tc.in)
		require.NoError(t, err, "ParseInterval(%q)", tc.in)
		assert.Equal(t, tc.want, got, "ParseInterval(%q)", tc.in)
	}
}

func TestParseInterval_RejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "0", "-1m", "+1 fortnight", "+x minutes", "+1minute", "0 seconds", "-1 minute"} {
		_, err := ParseInterval(in)

		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr), "ParseInterval(%q): expected *ConfigurationError, got %v", in, err)
		assert.Equal(t, "interval", cfgErr.Option)
	}
}

func TestParseInterval_RejectsOverflow(t *testing.T) {
	for _, in := range []string{
		"+300000 weeks",
		"+9223372036854775807 seconds",
		"9223372036854775807",
		"+15000 weeks 15000 weeks",
	} {
		_, err := ParseInterval(in)

		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr), "ParseInterval(%q): expected *ConfigurationError, got %v", in, err)
		assert.Contains(t, cfgErr.Reason, "overflows")
	}
}
