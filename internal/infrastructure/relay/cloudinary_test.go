package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/media-catalog/internal/config"
	domain "github.com/janhq/media-catalog/internal/domain/media"
	"github.com/janhq/media-catalog/internal/utils/platformerrors"
)

type cloudinaryStub struct {
	mu            sync.Mutex
	paths         []string
	folders       []string
	resourceTypes []string
	publicIDs     []string
	uploaded      []string
	destroy       string
	reject        string
}

func (s *cloudinaryStub) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.paths = append(s.paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/upload"):
			require.NoError(t, r.ParseMultipartForm(1<<20))
			s.folders = append(s.folders, r.FormValue("folder"))
			s.resourceTypes = append(s.resourceTypes, r.FormValue("resource_type"))
			file, _, err := r.FormFile("file")
			require.NoError(t, err)
			data, _ := io.ReadAll(file)
			s.uploaded = append(s.uploaded, string(data))

			if s.reject != "" {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": s.reject}})
				return
			}
			publicID := r.FormValue("folder") + "/abc123"
			_ = json.NewEncoder(w).Encode(map[string]any{
				"public_id":  publicID,
				"secure_url": "https://res.cloudinary.com/demo/upload/v1/" + publicID,
			})
		case strings.HasSuffix(r.URL.Path, "/destroy"):
			s.publicIDs = append(s.publicIDs, r.FormValue("public_id"))
			_ = json.NewEncoder(w).Encode(map[string]string{"result": s.destroy})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestCloudinaryRelay(t *testing.T, stub *cloudinaryStub) *CloudinaryRelay {
	t.Helper()
	server := httptest.NewServer(stub.handler(t))
	t.Cleanup(server.Close)

	relay, err := NewCloudinaryRelay(&config.Config{
		CloudinaryCloudName:    "demo",
		CloudinaryAPIKey:       "key",
		CloudinaryAPISecret:    "secret",
		CloudinaryUploadPrefix: server.URL,
	}, zerolog.Nop())
	require.NoError(t, err)
	return relay
}

func TestCloudinaryRelay_Upload(t *testing.T) {
	tests := []struct {
		name         string
		folder       string
		kind         domain.AssetKind
		body         string
		resourceType string
	}{
		{"video", "videos", domain.AssetKindVideo, "video-bytes", "video"},
		{"thumbnail", "thumbnails", domain.AssetKindImage, "image-bytes", "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &cloudinaryStub{}
			relay := newTestCloudinaryRelay(t, stub)

			asset, err := relay.Upload(context.Background(), domain.UploadRequest{
				Folder: tt.folder,
				Kind:   tt.kind,
				Body:   strings.NewReader(tt.body),
			})
			require.NoError(t, err)

			assert.Equal(t, "https://res.cloudinary.com/demo/upload/v1/"+tt.folder+"/abc123", asset.URL)
			assert.Equal(t, tt.folder+"/abc123", asset.Ref)
			assert.Equal(t, tt.kind, asset.Kind)

			require.Len(t, stub.paths, 1)
			assert.Equal(t, "/v1_1/demo/auto/upload", stub.paths[0])
			assert.Equal(t, []string{tt.resourceType}, stub.resourceTypes)
			assert.Equal(t, []string{tt.folder}, stub.folders)
			assert.Equal(t, []string{tt.body}, stub.uploaded)
		})
	}
}

func TestCloudinaryRelay_UploadRejected(t *testing.T) {
	stub := &cloudinaryStub{reject: "Invalid image file"}
	relay := newTestCloudinaryRelay(t, stub)

	asset, err := relay.Upload(context.Background(), domain.UploadRequest{
		Folder: "thumbnails",
		Kind:   domain.AssetKindImage,
		Body:   strings.NewReader("not-an-image"),
	})
	require.Error(t, err)
	assert.Nil(t, asset)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
	assert.Contains(t, err.Error(), "cloudinary rejected image upload")

	require.Len(t, stub.paths, 1)
	assert.Equal(t, []string{"image"}, stub.resourceTypes)
	assert.Equal(t, []string{"not-an-image"}, stub.uploaded)
}

func TestCloudinaryRelay_Delete(t *testing.T) {
	tests := []struct {
		name    string
		result  string
		wantErr bool
	}{
		{"deleted", "ok", false},
		{"already gone", "not found", false},
		{"unexpected result", "error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &cloudinaryStub{destroy: tt.result}
			relay := newTestCloudinaryRelay(t, stub)

			err := relay.Delete(context.Background(), domain.Asset{Ref: "thumbnails/abc123", Kind: domain.AssetKindImage})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
			} else {
				require.NoError(t, err)
			}
			require.Len(t, stub.paths, 1)
			assert.Equal(t, "/v1_1/demo/image/destroy", stub.paths[0])
			assert.Equal(t, []string{"thumbnails/abc123"}, stub.publicIDs)
		})
	}
}

func TestNewCloudinaryRelay_UploadPrefix(t *testing.T) {
	relay, err := NewCloudinaryRelay(&config.Config{
		CloudinaryCloudName:    "demo",
		CloudinaryAPIKey:       "key",
		CloudinaryAPISecret:    "secret",
		CloudinaryUploadPrefix: "http://cloudinary.test/",
	}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "http://cloudinary.test", relay.cld.Upload.Config.API.UploadPrefix)
	assert.Equal(t, "http://cloudinary.test", relay.cld.Admin.Config.API.UploadPrefix)

	relay, err = NewCloudinaryRelay(&config.Config{CloudinaryCloudName: "demo", CloudinaryAPIKey: "key", CloudinaryAPISecret: "secret"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "https://api.cloudinary.com", relay.cld.Upload.Config.API.UploadPrefix)
}
