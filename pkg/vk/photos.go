package vk

import (
	"fmt"
	"time"

	apperrors "vkbackup/pkg/errors"
)

// DateLayout formats the date suffix used to disambiguate file names
const DateLayout = "2006-01-02"

// LargestSize returns the rendition with the greatest width*height.
// On ties the variant listed first wins. ok is false when sizes is empty.
func LargestSize(sizes []Size) (best Size, ok bool) {
	for i, s := range sizes {
		if i == 0 || s.Area() > best.Area() {
			best = s
		}
	}
	return best, len(sizes) > 0
}

// fileNamer hands out "{likes}.jpg" names. When a like count repeats, the later
// photo gets "{likes}_{date}.jpg". Only the bare name is checked for collisions,
// so two later photos with the same like count taken on the same day still end
// up with the same name.
type fileNamer struct {
	used     map[string]bool
	location *time.Location
}

func newFileNamer(loc *time.Location) *fileNamer {
	if loc == nil {
		loc = time.Local
	}
	return &fileNamer{used: make(map[string]bool), location: loc}
}

func (n *fileNamer) name(likes int, date time.Time) string {
	base := fmt.Sprintf("%d.jpg", likes)
	name := base
	if n.used[base] {
		name = fmt.Sprintf("%d_%s.jpg", likes, date.In(n.location).Format(DateLayout))
	}
	n.used[name] = true
	return name
}

// BuildPhotos turns raw API items into photo descriptors in API order,
// validating the fields the selection and naming rules depend on.
func BuildPhotos(items []PhotoItem, loc *time.Location) ([]Photo, error) {
	namer := newFileNamer(loc)
	photos := make([]Photo, 0, len(items))

	for i, item := range items {
		size, ok := LargestSize(item.Sizes)
		if !ok {
			return nil, apperrors.Schema(apperrors.OpFetch, fmt.Sprintf("item %d (id %d) has no size variants", i, item.ID), nil)
		}
		if size.Type == "" {
			return nil, apperrors.Schema(apperrors.OpFetch, fmt.Sprintf("item %d (id %d) largest size has no type", i, item.ID), nil)
		}
		if size.URL == "" {
			return nil, apperrors.Schema(apperrors.OpFetch, fmt.Sprintf("item %d (id %d) size %q has no url", i, item.ID, size.Type), nil)
		}
		if item.Likes == nil {
			return nil, apperrors.Schema(apperrors.OpFetch, fmt.Sprintf("item %d (id %d) has no likes object", i, item.ID), nil)
		}

		if item.Date <= 0 {
			return nil, apperrors.Schema(apperrors.OpFetch, fmt.Sprintf("item %d (id %d) has no date", i, item.ID), nil)
		}

		date := time.Unix(item.Date, 0)
		photos = append(photos, Photo{
			ID:        item.ID,
			FileName:  namer.name(item.Likes.Count, date),
			SizeTag:   size.Type,
			SourceURL: size.URL,
			Likes:     item.Likes.Count,
			Date:      date,
			Width:     size.Width,
			Height:    size.Height,
		})
	}

	return photos, nil
}
