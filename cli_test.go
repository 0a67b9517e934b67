package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/motemen/go-testutil/dataloc"
	"github.com/stretchr/testify/require"
)

func TestCLIParse(t *testing.T) {
	cases := []struct {
		name     string
		envs     map[string]string
		args     []string
		expected CLI
		wantErr  bool
	}{
		{
			name: "default",
			args: []string{"gotail"},
			expected: CLI{
				Lines:         LineCount{Count: 10},
				SleepInterval: 1 * time.Second,
				LogFormat:     "text",
				LogLevel:      slog.LevelInfo,
			},
		},
		{
			name: "lines and follow",
			args: []string{"gotail", "-n", "25", "-f", "/var/log/syslog"},
			expected: CLI{
				Lines:         LineCount{Count: 25},
				Follow:        true,
				SleepInterval: 1 * time.Second,
				LogFormat:     "text",
				LogLevel:      slog.LevelInfo,
				Files:         []string{"/var/log/syslog"},
			},
		},
		{
			name: "skip from start",
			args: []string{"gotail", "-n", "+3", "app.log"},
			expected: CLI{
				Lines:         LineCount{Count: 3, FromStart: true},
				SleepInterval: 1 * time.Second,
				LogFormat:     "text",
				LogLevel:      slog.LevelInfo,
				Files:         []string{"app.log"},
			},
		},
		{
			name: "multiple files quiet",
			args: []string{"gotail", "-q", "a.log", "b.log"},
			expected: CLI{
				Lines:         LineCount{Count: 10},
				Quiet:         true,
				SleepInterval: 1 * time.Second,
				LogFormat:     "text",
				LogLevel:      slog.LevelInfo,
				Files:         []string{"a.log", "b.log"},
			},
		},
		{
			name: "from env",
			envs: map[string]string{
				"GOTAIL_LINES":          "100",
				"GOTAIL_FOLLOW":         "true",
				"GOTAIL_LOG_FORMAT":     "json",
				"GOTAIL_LOG_LEVEL":      "warn",
				"GOTAIL_SLEEP_INTERVAL": "250ms",
			},
			args: []string{"gotail"},
			expected: CLI{
				Lines:         LineCount{Count: 100},
				Follow:        true,
				SleepInterval: 250 * time.Millisecond,
				LogFormat:     "json",
				LogLevel:      slog.LevelWarn,
			},
		},
		{
			name:    "malformed line count",
			args:    []string{"gotail", "-n", "ten"},
			wantErr: true,
		},
		{
			name:    "negative line count",
			args:    []string{"gotail", "-n", "-3"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			testLoc := dataloc.L(tc.name)
			for k, v := range tc.envs {
				t.Setenv(k, v)
			}
			var actual CLI
			err := actual.Parse(tc.args[1:])
			if tc.wantErr {
				require.Error(t, err, testLoc)
				return
			}
			require.NoError(t, err, testLoc)
			require.EqualValues(t, tc.expected, actual, testLoc)
		})
	}
}

func TestLineCountUnmarshalText(t *testing.T) {
	var lc LineCount
	require.NoError(t, lc.UnmarshalText([]byte("42")))
	require.Equal(t, LineCount{Count: 42}, lc)
	require.Equal(t, "42", lc.String())

	require.NoError(t, lc.UnmarshalText([]byte("+7")))
	require.Equal(t, LineCount{Count: 7, FromStart: true}, lc)
	require.Equal(t, "+7", lc.String())

	require.Error(t, lc.UnmarshalText([]byte("abc")))
	require.Error(t, lc.UnmarshalText([]byte("-1")))
	require.Error(t, lc.UnmarshalText([]byte("+")))
}
