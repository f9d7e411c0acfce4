package clipboard

import (
	"fmt"
	"testing"

	"mangaview/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWriter(t *testing.T) {
	m := &Memory{}
	src := []byte{1, 2, 3}
	require.NoError(t, m.WriteImage(src))
	src[0] = 9

	assert.Equal(t, []byte{1, 2, 3}, m.Image())
	assert.Equal(t, 1, m.Writes())
}

func TestMemoryWriterDenied(t *testing.T) {
	m := &Memory{Err: fmt.Errorf("permission denied")}
	err := m.WriteImage([]byte{1})
	require.Error(t, err)
	assert.True(t, errors.IsClipboardError(err))
	assert.Contains(t, err.Error(), "permission denied")
	assert.Nil(t, m.Image())
	assert.Equal(t, 0, m.Writes())
}

func TestWriterInterface(t *testing.T) {
	var _ Writer = NewSystem()
	var _ Writer = &Memory{}
}
