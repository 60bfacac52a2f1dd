package relay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/media-catalog/internal/config"
	domain "github.com/janhq/media-catalog/internal/domain/media"
	"github.com/janhq/media-catalog/internal/utils/platformerrors"
)

func newTestLocalRelay(t *testing.T) *LocalRelay {
	t.Helper()
	cfg := &config.Config{
		HTTPPort:            5000,
		LocalStoragePath:    t.TempDir(),
		LocalStorageBaseURL: "http://media.test/files/",
	}
	relay, err := NewLocalRelay(cfg, zerolog.Nop())
	require.NoError(t, err)
	return relay
}

func TestLocalRelay_UploadAndDelete(t *testing.T) {
	relay := newTestLocalRelay(t)
	ctx := context.Background()

	asset, err := relay.Upload(ctx, domain.UploadRequest{
		Folder:      "thumbnails",
		Kind:        domain.AssetKindImage,
		Filename:    "cover.png",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.AssetKindImage, asset.Kind)
	assert.True(t, strings.HasPrefix(asset.Ref, "thumbnails/"))
	assert.Equal(t, "http://media.test/files/"+asset.Ref, asset.URL)

	data, err := os.ReadFile(filepath.Join(relay.BasePath(), filepath.FromSlash(asset.Ref)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, relay.Delete(ctx, *asset))
	_, err = os.Stat(filepath.Join(relay.BasePath(), filepath.FromSlash(asset.Ref)))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, relay.Delete(ctx, *asset))
}

func TestLocalRelay_DeleteRejectsEscapingKey(t *testing.T) {
	relay := newTestLocalRelay(t)

	err := relay.Delete(context.Background(), domain.Asset{Ref: "../outside.txt", Kind: domain.AssetKindVideo})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
}

func TestLocalRelay_UploadCancelledRemovesPartialFile(t *testing.T) {
	relay := newTestLocalRelay(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := relay.Upload(ctx, domain.UploadRequest{
		Folder:   "videos",
		Kind:     domain.AssetKindVideo,
		Filename: "clip.mp4",
		Body:     strings.NewReader("video-bytes"),
	})
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(relay.BasePath(), "videos"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewLocalRelay_DefaultBaseURL(t *testing.T) {
	cfg := &config.Config{HTTPPort: 8080, LocalStoragePath: t.TempDir()}
	relay, err := NewLocalRelay(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files", relay.baseURL)
}
