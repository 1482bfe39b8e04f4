package backup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vkbackup/pkg/config"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/storage"
	"vkbackup/pkg/vk"
	"vkbackup/pkg/yadisk"
)

// ErrNoPhotos is returned when the source has nothing to back up
var ErrNoPhotos = errors.New("no photos to back up")

// Result summarizes a run. State is the last state the run entered; it is
// StateDone only when the manifest was written.
type Result struct {
	RunID        string
	State        State
	UserID       string
	Folder       string
	ManifestPath string
	Fetched      int
	Uploaded     int
	Failed       int
	Records      []storage.Record
	Duration     time.Duration
}

// Runner copies a user's profile photos from a PhotoSource into a StorageSink
// and records accepted uploads in a manifest.
type Runner struct {
	source       PhotoSource
	sink         StorageSink
	progress     Progress
	folderPrefix string
	manifestPath string
	logger       logger.Logger
}

// New creates a Runner backed by the VK API and Yandex.Disk
func New(cfg *config.Config, log logger.Logger) (*Runner, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	source, err := vk.NewClient(cfg, log)
	if err != nil {
		return nil, err
	}

	return NewRunner(source, yadisk.NewClient(cfg, log), cfg, log), nil
}

// NewRunner creates a Runner from explicit source and sink implementations
func NewRunner(source PhotoSource, sink StorageSink, cfg *config.Config, log logger.Logger) *Runner {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Runner{
		source:       source,
		sink:         sink,
		progress:     nopProgress{},
		folderPrefix: cfg.YandexDisk.FolderPrefix,
		manifestPath: cfg.Output.ManifestPath,
		logger:       log,
	}
}

// SetProgress sets the observer notified during the upload loop
func (r *Runner) SetProgress(p Progress) {
	if p == nil {
		p = nopProgress{}
	}
	r.progress = p
}

// FolderFor returns the remote folder used for userID
func (r *Runner) FolderFor(userID string) string {
	return yadisk.FolderName(r.folderPrefix, strings.TrimSpace(userID))
}

// Run executes one backup. Errors from fetching photos or creating the folder
// end the run before any upload. Failed uploads are skipped. Once the upload
// loop has started the manifest is always written, also when the context is
// cancelled part way through.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:        uuid.NewString(),
		State:        StateCollectInput,
		UserID:       strings.TrimSpace(req.UserID),
		ManifestPath: r.manifestPath,
		Records:      []storage.Record{},
	}
	defer func() { result.Duration = time.Since(start) }()

	log := r.logger.WithFields(map[string]interface{}{
		"run_id":  result.RunID,
		"user_id": result.UserID,
	})

	if err := req.Validate(); err != nil {
		log.WithError(err).Error("invalid backup request")
		return result, err
	}

	log.InfoWithFields("starting backup", map[string]interface{}{
		"count": req.Count,
		"state": StateFetchPhotos.String(),
	})

	result.State = StateFetchPhotos
	photos, err := r.source.FetchProfilePhotos(ctx, result.UserID, req.Count)
	if err != nil {
		log.WithError(err).Error("failed to fetch photos")
		return result, fmt.Errorf("failed to fetch photos: %w", err)
	}
	result.Fetched = len(photos)
	if len(photos) == 0 {
		log.Warn("no photos returned")
		return result, ErrNoPhotos
	}

	result.State = StateCreateFolder
	result.Folder = r.FolderFor(result.UserID)
	log = log.WithField("folder", result.Folder)
	if err := r.sink.EnsureFolder(ctx, result.Folder); err != nil {
		log.WithError(err).Error("failed to create folder")
		return result, fmt.Errorf("failed to create folder %s: %w", result.Folder, err)
	}

	result.State = StateUploadLoop
	r.progress.Start(len(photos))
	manifest := storage.NewManifest(r.manifestPath)
	loopErr := r.uploadAll(ctx, log, photos, manifest, result)
	r.progress.Complete()

	result.State = StatePersistManifest
	result.Records = manifest.Records()
	if err := manifest.Save(); err != nil {
		log.WithError(err).Error("failed to save manifest")
		return result, fmt.Errorf("failed to save manifest: %w", err)
	}
	log.InfoWithFields("manifest saved", map[string]interface{}{
		"path":    manifest.Path(),
		"records": manifest.Len(),
	})

	if loopErr != nil {
		return result, loopErr
	}

	result.State = StateDone
	log.InfoWithFields("backup completed", map[string]interface{}{
		"fetched":  result.Fetched,
		"uploaded": result.Uploaded,
		"failed":   result.Failed,
	})

	return result, nil
}

// uploadAll uploads photos in order and appends accepted ones to manifest.
// It only returns an error when ctx is done.
func (r *Runner) uploadAll(ctx context.Context, log logger.Logger, photos []vk.Photo, manifest *storage.Manifest, result *Result) error {
	for i, photo := range photos {
		if err := ctx.Err(); err != nil {
			log.WarnWithFields("upload loop interrupted", map[string]interface{}{
				"remaining": len(photos) - i,
			})
			return fmt.Errorf("backup interrupted: %w", err)
		}

		r.progress.StartUpload(photo.FileName)
		fields := map[string]interface{}{
			"file_name": photo.FileName,
			"size_tag":  photo.SizeTag,
		}

		href, err := r.sink.UploadByURL(ctx, result.Folder, photo.FileName, photo.SourceURL)
		if err != nil {
			result.Failed++
			r.progress.FailUpload(photo.FileName, err)
			log.WithError(err).ErrorWithFields("upload failed, skipping", fields)
			continue
		}

		manifest.Append(storage.Record{FileName: photo.FileName, SizeTag: photo.SizeTag})
		result.Uploaded++
		r.progress.CompleteUpload(photo.FileName, photo.SizeTag)

		fields["operation"] = href
		log.InfoWithFields("upload accepted", fields)
	}

	return nil
}
