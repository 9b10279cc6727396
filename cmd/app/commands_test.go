package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/prasetyowira/qrstudio/config"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/export"
	"github.com/prasetyowira/qrstudio/domain/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		CacheSize:   16,
		JPEGQuality: 92,
		Style:       style.DefaultConfig(),
	}
}

func TestStyleFlagsConfig(t *testing.T) {
	t.Run("clamps sizes", func(t *testing.T) {
		f := &styleFlags{size: 5000, padding: -3, fg: "#000000", bg: "#ffffff", level: "h", format: "JPEG"}

		cfg, err := f.config()

		require.NoError(t, err)
		assert.Equal(t, style.MaxPixelSize, cfg.PixelSize)
		assert.Equal(t, 0, cfg.Padding)
		assert.Equal(t, style.LevelHigh, cfg.Level)
		assert.Equal(t, style.FormatJPEG, cfg.Format)
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		f := &styleFlags{size: 256, level: "X", format: "png"}

		_, err := f.config()

		assert.Error(t, err)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		f := &styleFlags{size: 256, level: "L", format: "gif"}

		_, err := f.config()

		assert.Error(t, err)
	})
}

func TestGenerateCommand(t *testing.T) {
	// Arrange
	out := filepath.Join(t.TempDir(), "code.png")
	cmd := newGenerateCommand(testConfig())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"https://example.com", "-o", out, "--size", "128", "--padding", "16"})

	// Act
	err := cmd.ExecuteContext(context.Background())

	// Assert
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 160, img.Bounds().Dx())
	assert.Equal(t, 160, img.Bounds().Dy())
	assert.Contains(t, stdout.String(), out)
}

func TestGenerateCommandStdout(t *testing.T) {
	cmd := newGenerateCommand(testConfig())
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"hello", "-o", "-", "--format", "jpeg"})

	err := cmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	// JPEG SOI marker
	assert.True(t, bytes.HasPrefix(stdout.Bytes(), []byte{0xFF, 0xD8}))
}

func TestBulkCommand(t *testing.T) {
	// Arrange
	out := filepath.Join(t.TempDir(), "codes.zip")
	cmd := newBulkCommand(testConfig())
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader("alpha\n\n  beta  \n"))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"-i", "-", "-o", out})

	// Act
	err := cmd.ExecuteContext(context.Background())

	// Assert
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"qrcode_1_alpha.png", "qrcode_2_beta.png"}, names)
	assert.Contains(t, stderr.String(), constant.NoteZipDoneTitle)
}

func TestBulkCommandInputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "values.txt")
	require.NoError(t, os.WriteFile(in, []byte("one\ntwo\nthree\n"), 0o644))
	out := filepath.Join(dir, "out.zip")
	cmd := newBulkCommand(testConfig())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-i", in, "-o", out, "--format", "svg"})

	err := cmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)
	assert.Equal(t, "qrcode_1_one.png", zr.File[0].Name)
}

func TestBulkCommandEmptyInput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "codes.zip")
	cmd := newBulkCommand(testConfig())
	var stderr bytes.Buffer
	cmd.SetIn(strings.NewReader("\n   \n"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"-o", out})

	err := cmd.ExecuteContext(context.Background())

	assert.ErrorIs(t, err, export.ErrNoInputs)
	assert.NoFileExists(t, out)
	assert.Contains(t, stderr.String(), constant.NoteNoCodesTitle)
}

func TestBulkCommandMissingFile(t *testing.T) {
	cmd := newBulkCommand(testConfig())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-i", filepath.Join(t.TempDir(), "missing.txt")})

	err := cmd.ExecuteContext(context.Background())

	assert.Error(t, err)
}

func TestPreviewCommand(t *testing.T) {
	cmd := newPreviewCommand(testConfig())
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"https://example.com"})

	err := cmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, stdout.String())
}

func TestPreviewCommandInvalidLevel(t *testing.T) {
	cmd := newPreviewCommand(testConfig())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"x", "--level", "Z"})

	err := cmd.ExecuteContext(context.Background())

	assert.Error(t, err)
}

func TestBulkCommandNamedColors(t *testing.T) {
	tests := []struct {
		name string
		fg   string
		bg   string
	}{
		{"svg names", "navy", "LightYellow"},
		{"rgb function", "rgb(0,0,128)", "white"},
		{"hsl function", "hsl(120, 100%, 20%)", "#fffff0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			out := filepath.Join(t.TempDir(), "codes.zip")
			cmd := newBulkCommand(testConfig())
			var stderr bytes.Buffer
			cmd.SetIn(strings.NewReader("google\nfacebook\n"))
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&stderr)
			cmd.SetArgs([]string{"-o", out, "--padding", "40", "--fg", tt.fg, "--bg", tt.bg})

			// Act
			err := cmd.ExecuteContext(context.Background())

			// Assert
			require.NoError(t, err)
			data, err := os.ReadFile(out)
			require.NoError(t, err)
			zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
			require.NoError(t, err)
			require.Len(t, zr.File, 2)
			assert.NotContains(t, stderr.String(), "skipped")

			rc, err := zr.File[0].Open()
			require.NoError(t, err)
			defer rc.Close()
			img, err := png.Decode(rc)
			require.NoError(t, err)
			bmp, err := gozxing.NewBinaryBitmapFromImage(img)
			require.NoError(t, err)
			res, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
			require.NoError(t, err)
			assert.Equal(t, "google", res.GetText())
		})
	}
}

func TestGenerateCommandNamedColor(t *testing.T) {
	out := filepath.Join(t.TempDir(), "code.png")
	cmd := newGenerateCommand(testConfig())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"hello", "-o", out, "--fg", "DarkGreen", "--bg", "transparent"})

	err := cmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestBulkCommandSkipsSymbolTooDense(t *testing.T) {
	// Arrange
	out := filepath.Join(t.TempDir(), "codes.zip")
	cmd := newBulkCommand(testConfig())
	var stderr bytes.Buffer
	cmd.SetIn(strings.NewReader("short\n" + strings.Repeat("a", 1000) + "\n"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"-o", out, "--size", "64"})

	// Act
	err := cmd.ExecuteContext(context.Background())

	// Assert
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "qrcode_1_short.png", zr.File[0].Name)
	assert.Contains(t, stderr.String(), "skipped #2")
	assert.Contains(t, stderr.String(), constant.ErrSymbolTooDense)
}
