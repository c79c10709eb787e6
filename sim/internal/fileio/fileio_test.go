package fileio

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateOpen_RoundTrip(t *testing.T) {
	for _, name := range []string{"plain.txt", "packed.txt.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			w, err := Create(path)
			require.NoError(t, err)
			_, err = io.WriteString(w, "chrome\nsshd\n")
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := Open(path)
			require.NoError(t, err)
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			require.Equal(t, "chrome\nsshd\n", string(data))
		})
	}
}

func TestCreate_CompressedFileIsNotPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packed.zst")
	w, err := Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "chrome\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEqual(t, "chrome\n", string(raw))
	// zstd frame magic number
	require.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, raw[:4])
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.zst"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
