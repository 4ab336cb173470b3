package spinner

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFrameCountsAdvances(t *testing.T) {
	s := &Spinner{label: "subgroups", total: 3}
	assert.Equal(t, "⠋ subgroups 0/3", s.frame(0))

	s.Advance()
	s.Advance()
	assert.Equal(t, "⠙ subgroups 2/3", s.frame(1))
	assert.Equal(t, "⠋ subgroups 2/3", s.frame(len(frames)))
}

func TestStopClearsLine(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "subgroups", 1)
	s.Advance()
	s.Stop()
	s.Stop()

	got := out.String()
	require.NotEmpty(t, got)
	assert.Equal(t, byte('\r'), got[len(got)-1])
}

func TestNilSpinnerIsNoop(t *testing.T) {
	var s *Spinner
	assert.NotPanics(t, func() {
		s.Advance()
		s.Stop()
	})
}

func TestStartIfTerminal_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.Nil(t, StartIfTerminal(f, "subgroups", 2))
	assert.Nil(t, StartIfTerminal(nil, "subgroups", 2))
}
