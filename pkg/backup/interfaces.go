package backup

import (
	"context"

	"vkbackup/pkg/vk"
)

// PhotoSource lists the photos to back up
type PhotoSource interface {
	FetchProfilePhotos(ctx context.Context, userID string, count int) ([]vk.Photo, error)
}

// StorageSink receives the photos by reference URL
type StorageSink interface {
	EnsureFolder(ctx context.Context, path string) error
	UploadByURL(ctx context.Context, folder, fileName, sourceURL string) (string, error)
}

// Progress observes the upload loop. It never influences the run.
type Progress interface {
	Start(total int)
	StartUpload(fileName string)
	CompleteUpload(fileName, sizeTag string)
	FailUpload(fileName string, err error)
	Complete()
}

type nopProgress struct{}

func (nopProgress) Start(int)                     {}
func (nopProgress) StartUpload(string)            {}
func (nopProgress) CompleteUpload(string, string) {}
func (nopProgress) FailUpload(string, error)      {}
func (nopProgress) Complete()                     {}
