package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/motemen/go-testutil/dataloc"
	"github.com/stretchr/testify/require"
)

// lastLines is the reference a backward scan must reproduce: the final n
// logical lines, each delimiter-terminated even when the source is not.
func lastLines(content string, n int) string {
	if content == "" || n == 0 {
		return ""
	}
	trimmed := strings.TrimSuffix(content, "\n")
	lines := strings.Split(trimmed, "\n")
	if n < len(lines) {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestBackwardsReader(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		numLines int
		expected string
	}{
		{
			name:     "last two of three",
			content:  "a\nb\nc\n",
			numLines: 2,
			expected: "b\nc\n",
		},
		{
			name:     "target exceeds line count",
			content:  "a\nb\nc\n",
			numLines: 10,
			expected: "a\nb\nc\n",
		},
		{
			name:     "target equals line count",
			content:  "a\nb\nc\n",
			numLines: 3,
			expected: "a\nb\nc\n",
		},
		{
			name:     "no trailing delimiter",
			content:  "a\nb\nc",
			numLines: 1,
			expected: "c\n",
		},
		{
			name:     "no trailing delimiter whole file",
			content:  "a\nb\nc",
			numLines: 5,
			expected: "a\nb\nc\n",
		},
		{
			name:     "empty file",
			content:  "",
			numLines: 10,
			expected: "",
		},
		{
			name:     "single line without delimiter",
			content:  "lonely",
			numLines: 3,
			expected: "lonely\n",
		},
		{
			name:     "zero lines requested",
			content:  "a\nb\n",
			numLines: 0,
			expected: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			testLoc := dataloc.L(tc.name)
			br, err := NewBackwardsReader(tc.numLines, strings.NewReader(tc.content))
			require.NoError(t, err, testLoc)
			var buf bytes.Buffer
			n, err := br.WriteTo(&buf)
			require.NoError(t, err, testLoc)
			require.Equal(t, tc.expected, buf.String(), testLoc)
			require.Equal(t, int64(buf.Len()), n, testLoc)
		})
	}
}

func TestBackwardsReader__BlockBoundaries(t *testing.T) {
	longLine := strings.Repeat("x", blockSize+100)
	cases := []struct {
		name     string
		content  string
		numLines int
	}{
		{
			name:     "content multiple of block size",
			content:  strings.Repeat(strings.Repeat("a", 1023)+"\n", 8), // 8192 bytes
			numLines: 3,
		},
		{
			name:     "content one byte past block size",
			content:  strings.Repeat("b", blockSize-1) + "\nzz\n",
			numLines: 2,
		},
		{
			name:     "line straddles block boundary",
			content:  "first\n" + longLine + "\nlast\n",
			numLines: 2,
		},
		{
			name:     "single line longer than several blocks",
			content:  strings.Repeat("y", 3*blockSize+17) + "\n",
			numLines: 1,
		},
		{
			name:     "many short lines across blocks",
			content:  strings.Repeat("0123456789\n", 2000),
			numLines: 15,
		},
		{
			name:     "window begins exactly at block boundary",
			content:  strings.Repeat("c", blockSize-1) + "\n" + "tail-one\ntail-two\n",
			numLines: 2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			testLoc := dataloc.L(tc.name)
			br, err := NewBackwardsReader(tc.numLines, strings.NewReader(tc.content))
			require.NoError(t, err, testLoc)
			var buf bytes.Buffer
			_, err = br.WriteTo(&buf)
			require.NoError(t, err, testLoc)
			require.Equal(t, lastLines(tc.content, tc.numLines), buf.String(), testLoc)
		})
	}
}

func TestBackwardsReader__EndOffset(t *testing.T) {
	content := "a\nb\nc\n"
	br, err := NewBackwardsReader(2, strings.NewReader(content))
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), br.EndOffset())
}
