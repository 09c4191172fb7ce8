//go:build unix

package adapter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/refix/internal/model"
)

func TestLocalFileViewAdapter_WritableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app")
	writeTestFile(t, path, "hello /build/AAA world")

	view, err := NewLocalFileViewAdapter().Open(m.Path(path), true)
	require.NoError(t, err)

	data := view.Bytes()
	require.Len(t, data, 22)

	copy(data[6:], "/usr/src/B")
	require.NoError(t, view.Flush(6, 10))
	require.NoError(t, view.Close())

	assert.Equal(t, "hello /usr/src/B world", string(readFileBytes(t, path)))
}

func TestLocalFileViewAdapter_LargeFileFlushAcrossPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big")
	content := make([]byte, 3*4096+123)
	writeTestBytes(t, path, content)

	view, err := NewLocalFileViewAdapter().Open(m.Path(path), true)
	require.NoError(t, err)

	data := view.Bytes()
	for i := 4000; i < 9000; i++ {
		data[i] = 'x'
	}

	require.NoError(t, view.Flush(4000, 5000))
	require.NoError(t, view.Close())

	got := readFileBytes(t, path)
	require.Len(t, got, len(content))
	assert.Equal(t, byte(0), got[3999])
	assert.Equal(t, byte('x'), got[4000])
	assert.Equal(t, byte('x'), got[8999])
	assert.Equal(t, byte(0), got[9000])
}

func TestLocalFileViewAdapter_FlushOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app")
	writeTestFile(t, path, "0123456789")

	view, err := NewLocalFileViewAdapter().Open(m.Path(path), true)
	require.NoError(t, err)

	t.Cleanup(func() { _ = view.Close() })

	assert.Error(t, view.Flush(5, 6))
	assert.Error(t, view.Flush(-1, 2))
	assert.Error(t, view.Flush(11, 1))
	assert.NoError(t, view.Flush(5, 5))
	assert.NoError(t, view.Flush(10, 0))
}

func TestLocalFileViewAdapter_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app")
	writeTestFile(t, path, "read only")

	view, err := NewLocalFileViewAdapter().Open(m.Path(path), false)
	require.NoError(t, err)

	assert.Equal(t, "read only", string(view.Bytes()))
	assert.NoError(t, view.Flush(0, 4), "flushing a read-only view is a no-op")
	require.NoError(t, view.Close())
}

func TestLocalFileViewAdapter_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	writeTestBytes(t, path, nil)

	view, err := NewLocalFileViewAdapter().Open(m.Path(path), true)
	require.NoError(t, err)

	assert.Empty(t, view.Bytes())
	assert.NoError(t, view.Flush(0, 0))
	assert.NoError(t, view.Close())
}

func TestLocalFileViewAdapter_MissingFile(t *testing.T) {
	_, err := NewLocalFileViewAdapter().Open(m.Path(filepath.Join(t.TempDir(), "missing")), true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening")
}

func TestLocalFileViewAdapter_CloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app")
	writeTestFile(t, path, "abc")

	view, err := NewLocalFileViewAdapter().Open(m.Path(path), true)
	require.NoError(t, err)

	require.NoError(t, view.Close())
	assert.NoError(t, view.Close())
}
