package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkbackup/pkg/config"
	apperrors "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/storage"
	"vkbackup/pkg/vk"
)

type fakeSource struct {
	photos []vk.Photo
	err    error
	calls  int
}

func (f *fakeSource) FetchProfilePhotos(ctx context.Context, userID string, count int) ([]vk.Photo, error) {
	f.calls++
	return f.photos, f.err
}

type fakeSink struct {
	folderErr error
	// uploadErrs maps a file name to the error its upload returns
	uploadErrs map[string]error
	// onUpload runs before each upload returns
	onUpload func(fileName string)

	folders []string
	uploads []string
}

func (f *fakeSink) EnsureFolder(ctx context.Context, path string) error {
	f.folders = append(f.folders, path)
	return f.folderErr
}

func (f *fakeSink) UploadByURL(ctx context.Context, folder, fileName, sourceURL string) (string, error) {
	f.uploads = append(f.uploads, folder+"/"+fileName)
	if f.onUpload != nil {
		f.onUpload(fileName)
	}
	if err := f.uploadErrs[fileName]; err != nil {
		return "", err
	}
	return "https://cloud-api.yandex.net/v1/disk/operations/" + fileName, nil
}

type recordingProgress struct {
	events []string
}

func (p *recordingProgress) Start(total int) {
	p.events = append(p.events, fmt.Sprintf("begin:%d", total))
}

func (p *recordingProgress) StartUpload(fileName string) {
	p.events = append(p.events, "start:"+fileName)
}

func (p *recordingProgress) CompleteUpload(fileName, sizeTag string) {
	p.events = append(p.events, "ok:"+fileName)
}

func (p *recordingProgress) FailUpload(fileName string, err error) {
	p.events = append(p.events, "fail:"+fileName)
}

func (p *recordingProgress) Complete() {
	p.events = append(p.events, "complete")
}

func samplePhotos() []vk.Photo {
	return []vk.Photo{
		{ID: 1, FileName: "10.jpg", SizeTag: "z", SourceURL: "https://sun.userapi.com/1.jpg", Likes: 10},
		{ID: 2, FileName: "5.jpg", SizeTag: "x", SourceURL: "https://sun.userapi.com/2.jpg", Likes: 5},
		{ID: 3, FileName: "10_2024-01-03.jpg", SizeTag: "w", SourceURL: "https://sun.userapi.com/3.jpg", Likes: 10},
	}
}

func newTestRunner(t *testing.T, source PhotoSource, sink StorageSink) (*Runner, *logger.TestLogger, string) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.ManifestPath = filepath.Join(t.TempDir(), "uploaded_photos.json")

	log := logger.NewTestLogger()
	return NewRunner(source, sink, cfg, log), log, cfg.Output.ManifestPath
}

func readManifest(t *testing.T, path string) []storage.Record {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []storage.Record
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func TestRunAllUploadsAccepted(t *testing.T) {
	source := &fakeSource{photos: samplePhotos()}
	sink := &fakeSink{}
	runner, log, manifestPath := newTestRunner(t, source, sink)
	progress := &recordingProgress{}
	runner.SetProgress(progress)

	result, err := runner.Run(context.Background(), Request{UserID: "42", Count: 3})
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, "vk_profile_photos_42", result.Folder)
	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 3, result.Uploaded)
	assert.Equal(t, 0, result.Failed)
	assert.NotEmpty(t, result.RunID)

	assert.Equal(t, []string{"vk_profile_photos_42"}, sink.folders)
	assert.Equal(t, []string{
		"vk_profile_photos_42/10.jpg",
		"vk_profile_photos_42/5.jpg",
		"vk_profile_photos_42/10_2024-01-03.jpg",
	}, sink.uploads)

	want := []storage.Record{
		{FileName: "10.jpg", SizeTag: "z"},
		{FileName: "5.jpg", SizeTag: "x"},
		{FileName: "10_2024-01-03.jpg", SizeTag: "w"},
	}
	assert.Equal(t, want, readManifest(t, manifestPath))
	assert.Equal(t, want, result.Records)

	assert.Equal(t, []string{
		"begin:3",
		"start:10.jpg", "ok:10.jpg",
		"start:5.jpg", "ok:5.jpg",
		"start:10_2024-01-03.jpg", "ok:10_2024-01-03.jpg",
		"complete",
	}, progress.events)

	for _, msg := range log.GetMessagesByLevel("INFO") {
		assert.Equal(t, result.RunID, msg.Fields["run_id"])
	}
}

func TestRunSkipsFailedUploads(t *testing.T) {
	source := &fakeSource{photos: samplePhotos()}
	sink := &fakeSink{uploadErrs: map[string]error{
		"5.jpg": apperrors.Transport(apperrors.OpUpload, http.StatusInsufficientStorage, "DiskInsufficientStorageError", nil),
	}}
	runner, log, manifestPath := newTestRunner(t, source, sink)
	progress := &recordingProgress{}
	runner.SetProgress(progress)

	result, err := runner.Run(context.Background(), Request{UserID: "42", Count: 3})
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, 2, result.Uploaded)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, sink.uploads, 3, "a failed upload must not stop the loop")

	assert.Equal(t, []storage.Record{
		{FileName: "10.jpg", SizeTag: "z"},
		{FileName: "10_2024-01-03.jpg", SizeTag: "w"},
	}, readManifest(t, manifestPath))

	assert.Contains(t, progress.events, "fail:5.jpg")
	assert.True(t, log.HasMessage("upload failed, skipping"))
}

func TestRunAllUploadsFailWritesEmptyManifest(t *testing.T) {
	failAll := errors.New("rejected")
	source := &fakeSource{photos: samplePhotos()}
	sink := &fakeSink{uploadErrs: map[string]error{
		"10.jpg":            failAll,
		"5.jpg":             failAll,
		"10_2024-01-03.jpg": failAll,
	}}
	runner, _, manifestPath := newTestRunner(t, source, sink)

	result, err := runner.Run(context.Background(), Request{UserID: "42", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, 3, result.Failed)

	data, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestRunFetchFailureStopsBeforeFolder(t *testing.T) {
	source := &fakeSource{err: apperrors.API(apperrors.OpFetch, 30, "This profile is private")}
	sink := &fakeSink{}
	runner, _, manifestPath := newTestRunner(t, source, sink)

	result, err := runner.Run(context.Background(), Request{UserID: "42", Count: 5})
	require.Error(t, err)

	assert.Equal(t, StateFetchPhotos, result.State)
	assert.Equal(t, apperrors.ErrorTypeAPI, apperrors.TypeOf(err))
	assert.Empty(t, sink.folders)
	assert.Empty(t, sink.uploads)
	assert.NoFileExists(t, manifestPath)
}

func TestRunNoPhotos(t *testing.T) {
	source := &fakeSource{photos: []vk.Photo{}}
	sink := &fakeSink{}
	runner, _, manifestPath := newTestRunner(t, source, sink)

	result, err := runner.Run(context.Background(), Request{UserID: "42", Count: 5})
	assert.ErrorIs(t, err, ErrNoPhotos)
	assert.Equal(t, StateFetchPhotos, result.State)
	assert.Empty(t, sink.folders)
	assert.NoFileExists(t, manifestPath)
}

func TestRunFolderFailureStopsBeforeUploads(t *testing.T) {
	source := &fakeSource{photos: samplePhotos()}
	sink := &fakeSink{folderErr: apperrors.Transport(apperrors.OpCreateFolder, http.StatusUnauthorized, "UnauthorizedError", nil)}
	runner, _, manifestPath := newTestRunner(t, source, sink)

	result, err := runner.Run(context.Background(), Request{UserID: "42", Count: 3})
	require.Error(t, err)

	assert.Equal(t, StateCreateFolder, result.State)
	assert.Equal(t, apperrors.OpCreateFolder, apperrors.OpOf(err))
	assert.Empty(t, sink.uploads)
	assert.NoFileExists(t, manifestPath)
}

func TestRunInvalidRequest(t *testing.T) {
	source := &fakeSource{photos: samplePhotos()}
	runner, _, _ := newTestRunner(t, source, &fakeSink{})

	result, err := runner.Run(context.Background(), Request{UserID: "  ", Count: 5})
	assert.Equal(t, apperrors.ErrorTypeConfig, apperrors.TypeOf(err))
	assert.Equal(t, StateCollectInput, result.State)

	_, err = runner.Run(context.Background(), Request{UserID: "42", Count: 0})
	assert.Equal(t, apperrors.ErrorTypeConfig, apperrors.TypeOf(err))

	assert.Zero(t, source.calls)
}

func TestRunInterruptedKeepsAcceptedUploads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &fakeSource{photos: samplePhotos()}
	sink := &fakeSink{onUpload: func(fileName string) {
		if fileName == "10.jpg" {
			cancel()
		}
	}}
	runner, _, manifestPath := newTestRunner(t, source, sink)

	result, err := runner.Run(ctx, Request{UserID: "42", Count: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, StatePersistManifest, result.State)
	assert.Equal(t, []string{"vk_profile_photos_42/10.jpg"}, sink.uploads)
	assert.Equal(t, []storage.Record{{FileName: "10.jpg", SizeTag: "z"}}, readManifest(t, manifestPath))
}

func TestRunManifestWriteFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	// A directory in place of the manifest file makes the rename fail
	cfg.Output.ManifestPath = t.TempDir()

	runner := NewRunner(&fakeSource{photos: samplePhotos()}, &fakeSink{}, cfg, logger.NewTestLogger())
	result, err := runner.Run(context.Background(), Request{UserID: "42", Count: 3})
	require.Error(t, err)
	assert.Equal(t, StatePersistManifest, result.State)
	assert.Equal(t, 3, result.Uploaded)
}

func TestRunCustomFolderPrefix(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.YandexDisk.FolderPrefix = "backups/vk_"
	cfg.Output.ManifestPath = filepath.Join(t.TempDir(), "m.json")

	sink := &fakeSink{}
	runner := NewRunner(&fakeSource{photos: samplePhotos()[:1]}, sink, cfg, nil)
	_, err := runner.Run(context.Background(), Request{UserID: " 7 ", Count: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"backups/vk_7"}, sink.folders)
}

// TestRunEndToEnd drives real VK and Yandex.Disk clients against local servers
func TestRunEndToEnd(t *testing.T) {
	vkServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("owner_id"))
		fmt.Fprint(w, `{"response": {"count": 3, "items": [
			{"id": 1, "date": 1704110400, "likes": {"count": 10}, "sizes": [{"type": "z", "width": 1280, "height": 960, "url": "https://sun.userapi.com/1.jpg"}]},
			{"id": 2, "date": 1704196800, "likes": {"count": 5}, "sizes": [{"type": "x", "width": 604, "height": 453, "url": "https://sun.userapi.com/2.jpg"}]},
			{"id": 3, "date": 1704283200, "likes": {"count": 10}, "sizes": [{"type": "w", "width": 2560, "height": 1920, "url": "https://sun.userapi.com/3.jpg"}]}
		]}}`)
	}))
	defer vkServer.Close()

	var mu sync.Mutex
	var uploaded []string
	diskServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/resources":
			// Folder left over from a previous run
			w.WriteHeader(http.StatusConflict)
		case r.Method == http.MethodPost && r.URL.Path == "/resources/upload":
			path := r.URL.Query().Get("path")
			mu.Lock()
			uploaded = append(uploaded, path)
			mu.Unlock()
			if strings.HasSuffix(path, "/5.jpg") {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusAccepted)
			fmt.Fprint(w, `{"href": "https://cloud-api.yandex.net/v1/disk/operations/1", "method": "GET"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer diskServer.Close()

	cfg := config.DefaultConfig()
	cfg.Tokens.VKToken = "vk"
	cfg.Tokens.YDToken = "yd"
	cfg.VK.APIURL = vkServer.URL
	cfg.VK.TimeZone = "UTC"
	cfg.YandexDisk.APIURL = diskServer.URL
	cfg.Output.ManifestPath = filepath.Join(t.TempDir(), "uploaded_photos.json")

	runner, err := New(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), Request{UserID: "42", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, []string{
		"vk_profile_photos_42/10.jpg",
		"vk_profile_photos_42/5.jpg",
		"vk_profile_photos_42/10_2024-01-03.jpg",
	}, uploaded)

	assert.Equal(t, []storage.Record{
		{FileName: "10.jpg", SizeTag: "z"},
		{FileName: "10_2024-01-03.jpg", SizeTag: "w"},
	}, readManifest(t, cfg.Output.ManifestPath))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "collect_input", StateCollectInput.String())
	assert.Equal(t, "upload_loop", StateUploadLoop.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "unknown", State(42).String())
}
