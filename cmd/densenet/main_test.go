package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestTrainPredictRoundTrip(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "data", "xor.csv")
	models := filepath.Join(dir, "models")

	code, out, stderr := runCLI(t, "-seed", "1", "generate", "xor", csv)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, out, "Wrote 4 rows (xor)")

	code, out, stderr = runCLI(t,
		"-epochs", "20", "-hidden", "4", "-lr", "0.5", "-batch", "1",
		"-workers", "2", "-seed", "3", "-models", models,
		"train", csv, "xor-model")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, out, "Examples: 4\n")
	assert.Contains(t, out, "Features: 2\n")
	assert.Contains(t, out, "Outputs: 1\n")
	assert.Contains(t, out, "20/20 - loss: ")
	assert.Contains(t, out, "Status: SUCCESS")
	assert.FileExists(t, filepath.Join(models, "xor-model.dnet"))
	assert.Equal(t, 20, strings.Count(out, " - loss: "), "one progress line per epoch")

	code, out, stderr = runCLI(t, "-models", models, "predict", "xor-model", "[0, 1]")
	require.Equal(t, exitOK, code, stderr)
	assert.True(t, strings.HasPrefix(out, "[") && strings.HasSuffix(out, "]\n"), out)

	code, out, stderr = runCLI(t, "-models", models, "-class", "predict", "xor-model", "1,0")
	require.Equal(t, exitOK, code, stderr)
	assert.Regexp(t, `^class=[01] confidence=\d+\.\d{2}%\n$`, out)

	code, _, stderr = runCLI(t, "-models", models, "predict", "xor-model", "1,0,1")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "ERROR: ")
}

func TestTrain_Failures(t *testing.T) {
	dir := t.TempDir()

	code, _, stderr := runCLI(t, "-models", dir, "train", filepath.Join(dir, "missing.csv"), "m")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "ERROR: ")

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("a,b\nx,y\n"), 0o600))
	code, _, stderr = runCLI(t, "-models", dir, "train", empty, "m")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "no usable examples")

	code, _, _ = runCLI(t, "-models", dir, "train", empty, "../escape")
	assert.Equal(t, exitError, code)

	code, _, _ = runCLI(t, "-hidden", "8,x", "train", empty, "m")
	assert.Equal(t, exitUsage, code)
}

func TestPredict_MissingModel(t *testing.T) {
	code, _, stderr := runCLI(t, "-models", t.TempDir(), "predict", "nope", "1,2")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "load model")
}

func TestUsageErrors(t *testing.T) {
	for name, args := range map[string][]string{
		"no command":      nil,
		"unknown command": {"serve"},
		"missing args":    {"train", "only-one"},
		"extra args":      {"info", "now"},
		"unknown flag":    {"-turbo", "info"},
		"unknown kind":    {"generate", "spiral", "out.csv"},
	} {
		code, _, stderr := runCLI(t, args...)
		assert.Equal(t, exitUsage, code, name)
		assert.Contains(t, stderr, "Usage: densenet", name)
	}
}

func TestInfoAndVersion(t *testing.T) {
	code, out, _ := runCLI(t, "info")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "logical cores:")

	code, out, _ = runCLI(t, "version")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "densenet "+version+"\n", out)
}

func TestParseWidths(t *testing.T) {
	w, err := parseWidths(" 64, 32 ")
	require.NoError(t, err)
	assert.Equal(t, []int{64, 32}, w)

	w, err = parseWidths("")
	require.NoError(t, err)
	assert.Nil(t, w)

	for _, bad := range []string{"0", "8,", "a"} {
		_, err := parseWidths(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatVector(t *testing.T) {
	assert.Equal(t, "[0.5, 1, -0.25]", formatVector([]float64{0.5, 1, -0.25}))
	assert.Equal(t, "[]", formatVector(nil))
}
