package vk

import "time"

// PhotosResponse is the envelope returned by photos.get: exactly one of
// Response or Error is set by the API.
type PhotosResponse struct {
	Response *PhotosPayload `json:"response"`
	Error    *APIError      `json:"error"`
}

// PhotosPayload holds one page of photo items
type PhotosPayload struct {
	Count int         `json:"count"`
	Items []PhotoItem `json:"items"`
}

// PhotoItem is a single photo as returned with extended=1 and photo_sizes=1
type PhotoItem struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	AlbumID int64  `json:"album_id"`
	Date    int64  `json:"date"`
	Sizes   []Size `json:"sizes"`
	Likes   *Likes `json:"likes"`
}

// Size is one rendition of a photo
type Size struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}

// Area returns the pixel area of the rendition
func (s Size) Area() int64 {
	return int64(s.Width) * int64(s.Height)
}

// Likes holds the like counter of a photo
type Likes struct {
	Count     int `json:"count"`
	UserLikes int `json:"user_likes"`
}

// APIError is the error object VK returns with HTTP 200
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

// Photo describes the rendition chosen for upload and the name it will be stored under
type Photo struct {
	ID        int64
	FileName  string
	SizeTag   string
	SourceURL string
	Likes     int
	Date      time.Time
	Width     int
	Height    int
}
