package archive

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBack(t *testing.T, blob []byte) map[string]string {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	require.NoError(t, err)
	out := make(map[string]string, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = string(data)
	}
	return out
}

func TestZip_EntriesInOrder(t *testing.T) {
	// Arrange
	a := NewArchiver()
	z, err := a.NewArchive()
	require.NoError(t, err)

	// Act
	require.NoError(t, z.AddEntry("qrcode_1_a.png", []byte("first")))
	require.NoError(t, z.AddEntry("qrcode_2_b.png", []byte("second")))
	blob, err := z.Serialize(context.Background())

	// Assert
	require.NoError(t, err)
	r, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	require.NoError(t, err)
	require.Len(t, r.File, 2)
	assert.Equal(t, "qrcode_1_a.png", r.File[0].Name)
	assert.Equal(t, "qrcode_2_b.png", r.File[1].Name)
	assert.Equal(t, zip.Deflate, r.File[0].Method)
	assert.Equal(t, map[string]string{"qrcode_1_a.png": "first", "qrcode_2_b.png": "second"}, readBack(t, blob))
}

func TestZip_Store(t *testing.T) {
	modified := time.Date(2024, 1, 2, 3, 4, 6, 0, time.UTC)
	a := &Archiver{Method: zip.Store, now: func() time.Time { return modified }}
	z, err := a.NewArchive()
	require.NoError(t, err)
	require.NoError(t, z.AddEntry("x.png", []byte("x")))

	blob, err := z.Serialize(context.Background())

	require.NoError(t, err)
	r, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	require.NoError(t, err)
	assert.Equal(t, zip.Store, r.File[0].Method)
	assert.True(t, r.File[0].Modified.Equal(modified))
}

func TestZip_Empty(t *testing.T) {
	z, err := NewArchiver().NewArchive()
	require.NoError(t, err)

	blob, err := z.Serialize(context.Background())

	require.NoError(t, err)
	assert.Empty(t, readBack(t, blob))
}

func TestZip_SerializeOnce(t *testing.T) {
	z, err := NewArchiver().NewArchive()
	require.NoError(t, err)
	_, err = z.Serialize(context.Background())
	require.NoError(t, err)

	_, err = z.Serialize(context.Background())
	assert.ErrorIs(t, err, ErrSerialized)
	assert.ErrorIs(t, z.AddEntry("late.png", nil), ErrSerialized)
}

func TestZip_CancelledContext(t *testing.T) {
	z, err := NewArchiver().NewArchive()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = z.Serialize(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
