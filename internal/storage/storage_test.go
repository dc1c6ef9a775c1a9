package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"videos/a.mp4", "videos/a.mp4", false},
		{"/videos//a.mp4", "videos/a.mp4", false},
		{`docs\guida.pdf`, "docs/guida.pdf", false},
		{"../etc/passwd", "", true},
		{"videos/../../x", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanKey(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "https://media.example.org/"})
	require.NoError(t, err)

	require.NoError(t, st.Save(ctx, "videos/a.txt", strings.NewReader("ciao"), "text/plain"))

	ok, err := st.Exists(ctx, "videos/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	size, err := st.GetSize(ctx, "videos/a.txt")
	require.NoError(t, err)
	assert.EqualValues(t, 4, size)

	rc, err := st.Get(ctx, "videos/a.txt")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "ciao", string(data))

	url, err := st.GetURL(ctx, "videos/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.org/videos/a.txt", url)

	deleted, err := DeleteIfExists(ctx, st, "videos/a.txt")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = DeleteIfExists(ctx, st, "videos/a.txt")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestLocalizeLocalBackend(t *testing.T) {
	base := t.TempDir()
	st, err := NewLocalStorage(Config{BasePath: base})
	require.NoError(t, err)

	_, _, err = Localize(context.Background(), st, "docs/a.pdf")
	assert.Error(t, err, "missing file")

	require.NoError(t, st.Save(context.Background(), "docs/a.pdf", strings.NewReader("%PDF"), "application/pdf"))
	p, cleanup, err := Localize(context.Background(), st, "docs/a.pdf")
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, filepath.Join(base, "docs", "a.pdf"), p)
}

func TestSaveFile(t *testing.T) {
	ctx := context.Background()
	src := filepath.Join(t.TempDir(), "src.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpeg"), 0o644))

	st, err := NewLocalStorage(Config{BasePath: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, SaveFile(ctx, st, "previews/p.jpg", src, "image/jpeg"))
	ok, _ := st.Exists(ctx, "previews/p.jpg")
	assert.True(t, ok)
}

func TestNewStorageRejectsUnknownType(t *testing.T) {
	_, err := NewStorage(Config{Type: "ftp"})
	assert.Error(t, err)
}
