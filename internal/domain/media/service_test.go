package media_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/media-catalog/internal/config"
	"github.com/janhq/media-catalog/internal/domain/media"
	"github.com/janhq/media-catalog/internal/utils/platformerrors"
)

type uploadCall struct {
	Folder      string
	Kind        media.AssetKind
	Filename    string
	ContentType string
	Body        []byte
}

type fakeRelay struct {
	mu        sync.Mutex
	seq       int
	uploads   []uploadCall
	deleted   []media.Asset
	uploadFn  func(ctx context.Context, req media.UploadRequest) error
	deleteErr error
}

func (f *fakeRelay) Upload(ctx context.Context, req media.UploadRequest) (*media.Asset, error) {
	if f.uploadFn != nil {
		if err := f.uploadFn(ctx, req); err != nil {
			return nil, err
		}
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.uploads = append(f.uploads, uploadCall{
		Folder:      req.Folder,
		Kind:        req.Kind,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Body:        body,
	})
	ref := fmt.Sprintf("%s/asset-%d", req.Folder, f.seq)
	return &media.Asset{
		URL:  "https://res.example.com/demo/" + ref,
		Ref:  ref,
		Kind: req.Kind,
	}, nil
}

func (f *fakeRelay) Delete(ctx context.Context, asset media.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, asset)
	return nil
}

type memoryRepo struct {
	mu        sync.Mutex
	seq       int
	order     []string
	records   map[string]media.Record
	createErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]media.Record)}
}

func (r *memoryRepo) Create(ctx context.Context, record *media.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	record.ID = fmt.Sprintf("rec-%d", r.seq)
	r.records[record.ID] = *record
	r.order = append(r.order, record.ID)
	return nil
}

func (r *memoryRepo) List(ctx context.Context) ([]media.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []media.Record
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out, nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*media.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "media record not found", nil, "")
	}
	return &record, nil
}

func (r *memoryRepo) Ping(ctx context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		ThumbnailFolder:     "thumbnails",
		VideoFolder:         "videos",
		UploadTimeout:       5 * time.Second,
		CompensateOnFailure: true,
		CompensationTimeout: time.Second,
	}
}

func fileOf(name, contentType string, data []byte) *media.FileUpload {
	return &media.FileUpload{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func demoInput() media.CreateInput {
	return media.CreateInput{
		Title:       "Demo",
		Description: "A demo video",
		Thumbnail:   fileOf("thumb.png", "image/png", []byte("\x89PNG\r\n\x1a\nthumbnail-bytes")),
		Video:       fileOf("clip.mp4", "video/mp4", []byte("video-bytes")),
	}
}

func TestService_Create(t *testing.T) {
	relay := &fakeRelay{}
	repo := newMemoryRepo()
	svc := media.NewService(testConfig(), repo, relay, zerolog.Nop())

	record, err := svc.Create(context.Background(), demoInput())
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "Demo", record.Title)
	assert.Equal(t, "A demo video", record.Description)
	assert.True(t, strings.HasPrefix(record.ThumbnailURL, "https://res.example.com/demo/thumbnails/"))
	assert.True(t, strings.HasPrefix(record.VideoURL, "https://res.example.com/demo/videos/"))
	assert.NotEqual(t, "thumb.png", record.ThumbnailURL)
	assert.NotEqual(t, "clip.mp4", record.VideoURL)
	assert.False(t, record.CreatedAt.IsZero())

	require.Len(t, relay.uploads, 2)
	byKind := map[media.AssetKind]uploadCall{}
	for _, call := range relay.uploads {
		byKind[call.Kind] = call
	}
	assert.Equal(t, "thumbnails", byKind[media.AssetKindImage].Folder)
	assert.Equal(t, "videos", byKind[media.AssetKindVideo].Folder)
	assert.Equal(t, []byte("video-bytes"), byKind[media.AssetKindVideo].Body)
	assert.Empty(t, relay.deleted)

	stored, err := svc.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, *record, *stored)
}

func TestService_Create_TrimsTextFields(t *testing.T) {
	repo := newMemoryRepo()
	svc := media.NewService(testConfig(), repo, &fakeRelay{}, zerolog.Nop())

	in := demoInput()
	in.Title = "  Demo\n"
	in.Description = "\tA demo video  "

	record, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Demo", record.Title)
	assert.Equal(t, "A demo video", record.Description)

	stored, err := repo.GetByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Demo", stored.Title)
	assert.Equal(t, "A demo video", stored.Description)
}

func TestService_Create_NotIdempotent(t *testing.T) {
	svc := media.NewService(testConfig(), newMemoryRepo(), &fakeRelay{}, zerolog.Nop())

	first, err := svc.Create(context.Background(), demoInput())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), demoInput())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	records, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestService_Create_UploadsRunConcurrently(t *testing.T) {
	var arrived sync.WaitGroup
	arrived.Add(2)
	relay := &fakeRelay{
		uploadFn: func(ctx context.Context, req media.UploadRequest) error {
			arrived.Done()
			done := make(chan struct{})
			go func() {
				arrived.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-time.After(2 * time.Second):
				return errors.New("uploads were not issued concurrently")
			}
		},
	}
	svc := media.NewService(testConfig(), newMemoryRepo(), relay, zerolog.Nop())

	_, err := svc.Create(context.Background(), demoInput())
	require.NoError(t, err)
}

func TestService_Create_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *media.CreateInput)
		message string
	}{
		{"missing title", func(in *media.CreateInput) { in.Title = "  " }, "title is required"},
		{"missing description", func(in *media.CreateInput) { in.Description = "" }, "description is required"},
		{"missing thumbnail", func(in *media.CreateInput) { in.Thumbnail = nil }, "thumbnail file is required"},
		{"missing video", func(in *media.CreateInput) { in.Video = nil }, "video file is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relay := &fakeRelay{}
			repo := newMemoryRepo()
			svc := media.NewService(testConfig(), repo, relay, zerolog.Nop())

			in := demoInput()
			tt.mutate(&in)
			record, err := svc.Create(context.Background(), in)

			require.Error(t, err)
			assert.Nil(t, record)
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
			assert.Equal(t, tt.message, platformerrors.GetPlatformError(err).Message)
			assert.Empty(t, relay.uploads)
			assert.Empty(t, repo.records)
		})
	}
}

func TestService_Create_VideoFailureCompensatesThumbnail(t *testing.T) {
	relay := &fakeRelay{
		uploadFn: func(ctx context.Context, req media.UploadRequest) error {
			if req.Kind == media.AssetKindVideo {
				return errors.New("quota exceeded")
			}
			return nil
		},
	}
	repo := newMemoryRepo()
	svc := media.NewService(testConfig(), repo, relay, zerolog.Nop())

	_, err := svc.Create(context.Background(), demoInput())
	require.Error(t, err)
	assert.False(t, errors.Is(err, media.ErrCompensationFailed))

	// the thumbnail may or may not have been uploaded before the group was cancelled
	assert.Len(t, relay.deleted, len(relay.uploads))
	for _, asset := range relay.deleted {
		assert.Equal(t, media.AssetKindImage, asset.Kind)
	}
	assert.Empty(t, repo.records)
}

func TestService_Create_InsertFailureCompensatesBoth(t *testing.T) {
	relay := &fakeRelay{}
	repo := newMemoryRepo()
	repo.createErr = platformerrors.NewError(context.Background(), platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError, "failed to create media record", errors.New("connection reset"), "")
	svc := media.NewService(testConfig(), repo, relay, zerolog.Nop())

	_, err := svc.Create(context.Background(), demoInput())
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeDatabaseError))
	assert.False(t, errors.Is(err, media.ErrCompensationFailed))
	assert.Len(t, relay.deleted, 2)
}

func TestService_Create_CompensationFailureReportedDistinctly(t *testing.T) {
	relay := &fakeRelay{deleteErr: errors.New("host unreachable")}
	repo := newMemoryRepo()
	repo.createErr = errors.New("write conflict")
	svc := media.NewService(testConfig(), repo, relay, zerolog.Nop())

	_, err := svc.Create(context.Background(), demoInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, media.ErrCompensationFailed))
	assert.True(t, errors.Is(err, repo.createErr))
}

func TestService_Create_CompensationDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.CompensateOnFailure = false
	relay := &fakeRelay{}
	repo := newMemoryRepo()
	repo.createErr = errors.New("write conflict")
	svc := media.NewService(cfg, repo, relay, zerolog.Nop())

	_, err := svc.Create(context.Background(), demoInput())
	require.Error(t, err)
	assert.Empty(t, relay.deleted)
}

func TestService_Create_SniffsMissingContentType(t *testing.T) {
	relay := &fakeRelay{}
	svc := media.NewService(testConfig(), newMemoryRepo(), relay, zerolog.Nop())

	in := demoInput()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	in.Thumbnail = fileOf("thumb", "", png)

	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	for _, call := range relay.uploads {
		if call.Kind == media.AssetKindImage {
			assert.Equal(t, "image/png", call.ContentType)
			assert.Equal(t, png, call.Body)
		}
	}
}

func TestService_List_EmptyIsNotNil(t *testing.T) {
	svc := media.NewService(testConfig(), newMemoryRepo(), &fakeRelay{}, zerolog.Nop())

	records, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestService_Get_NotFound(t *testing.T) {
	svc := media.NewService(testConfig(), newMemoryRepo(), &fakeRelay{}, zerolog.Nop())

	_, err := svc.Get(context.Background(), "rec-404")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestRecord_Validate(t *testing.T) {
	record := media.Record{Title: "Demo", Description: "A demo video", ThumbnailURL: "https://x/t.png"}
	err := record.Validate(context.Background())
	require.Error(t, err)
	assert.Equal(t, "videoUrl", platformerrors.GetPlatformError(err).Context["field"])

	record.VideoURL = "https://x/v.mp4"
	assert.NoError(t, record.Validate(context.Background()))
}
