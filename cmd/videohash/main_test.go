package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCompareEncodedHashes(t *testing.T) {
	out, err := run(t, "compare", "0x341fefff8f780000", "0x741fcfff8f780000")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = run(t, "compare",
		"0b0011010000011111111011111111111110001111011110000000000000000000",
		"0X341FEFFF8F780000")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestCompareRejectsShortBinary(t *testing.T) {
	_, err := run(t, "compare", "0x341fefff8f780000", "0b0101")
	assert.Error(t, err)
}

func TestHashNeedsExactlyOneSource(t *testing.T) {
	_, err := run(t, "hash")
	assert.Error(t, err)

	_, err = run(t, "hash", "--path", "a.mp4", "--url", "https://example.com/v")
	assert.Error(t, err)
}

func TestBatchReportsFailures(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.mp4")
	out, err := run(t, "batch", "--storage-dir", t.TempDir(), missing)
	assert.Error(t, err)
	assert.True(t, strings.HasPrefix(out, "error\t"+missing), out)
}

func TestIsEncodedHash(t *testing.T) {
	assert.True(t, isEncodedHash("0xff"))
	assert.True(t, isEncodedHash("0B01"))
	assert.False(t, isEncodedHash("./0xvideo.mp4"))
	assert.False(t, isEncodedHash("https://example.com/v"))
}
