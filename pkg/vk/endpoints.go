package vk

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// MethodPhotosGet is the API method used to list photos of an album
	MethodPhotosGet = "photos.get"

	// ProfileAlbum selects the user's profile photo collection
	ProfileAlbum = "profile"

	// MaxCount is the largest page photos.get accepts
	MaxCount = 1000
)

// PhotosGetURL builds the photos.get request for a user's profile album with
// extended metadata (likes) and the full list of size variants.
func PhotosGetURL(baseURL, ownerID string, count int, token, version string) string {
	params := url.Values{}
	params.Set("owner_id", ownerID)
	params.Set("album_id", ProfileAlbum)
	params.Set("extended", "1")
	params.Set("photo_sizes", "1")
	params.Set("count", strconv.Itoa(count))
	params.Set("access_token", token)
	params.Set("v", version)

	return strings.TrimRight(baseURL, "/") + "/" + MethodPhotosGet + "?" + params.Encode()
}

// redactURL hides the access token so request URLs can be logged
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "***")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
