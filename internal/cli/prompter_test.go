package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_ReadLine(t *testing.T) {
	p := NewPrompter(strings.NewReader("  uno  \ndos\ntres"), io.Discard)
	ctx := context.Background()

	for _, want := range []string{"uno", "dos", "tres"} {
		got, err := p.ReadLine(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := p.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestPrompter_ReadLineCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	p := NewPrompter(pr, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "Sí\n", want: true},
		{input: "yes\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got, err := p.Confirm(context.Background(), "Clear ledger?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Clear ledger? [y/N]")
		})
	}
}

func TestPrompter_Progress(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(""), &out)

	p.Advance()
	p.StartProgress(2, "Importing")
	p.Advance()
	p.Advance()
	p.FinishProgress()
	p.FinishProgress()

	assert.Contains(t, out.String(), "Importing")
	assert.Nil(t, p.progressBar)
}
