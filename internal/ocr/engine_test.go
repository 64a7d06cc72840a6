package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureRunner struct {
	name string
	args []string
	out  string
	err  error
}

func (r *captureRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.name = name
	r.args = args
	return []byte(r.out), nil, r.err
}

func TestExecEngineBuildsArgs(t *testing.T) {
	runner := &captureRunner{out: " серия 0320 \n"}
	engine := NewExecEngine("tesseract", runner)

	text, err := engine.Recognize(context.Background(), "/tmp/doc.png", Options{
		Language:  "rus+eng",
		PSM:       6,
		Whitelist: "0123456789",
	})
	require.NoError(t, err)

	assert.Equal(t, "серия 0320", text)
	assert.Equal(t, "tesseract", runner.name)
	assert.Equal(t, []string{
		"/tmp/doc.png", "stdout",
		"-l", "rus+eng",
		"--psm", "6",
		"-c", "tessedit_char_whitelist=0123456789",
	}, runner.args)
}

func TestExecEngineOmitsUnsetOptions(t *testing.T) {
	runner := &captureRunner{}
	engine := NewExecEngine("", runner)

	_, err := engine.Recognize(context.Background(), "/tmp/doc.png", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/doc.png", "stdout"}, runner.args)
}

func TestExecEngineWrapsFailure(t *testing.T) {
	runner := &captureRunner{err: errors.New("exit status 1")}
	engine := NewExecEngine("tesseract", runner)

	_, err := engine.Recognize(context.Background(), "/tmp/doc.png", Options{})
	assert.ErrorContains(t, err, "tesseract")
}
