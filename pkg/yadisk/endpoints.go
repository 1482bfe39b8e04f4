package yadisk

import (
	"net/url"
	"strings"
)

const (
	// ResourcesPath is the REST resource for files and folders
	ResourcesPath = "/resources"

	// UploadPath requests an upload into a resource
	UploadPath = "/resources/upload"

	// AuthScheme prefixes the token in the Authorization header
	AuthScheme = "OAuth"
)

// ResourcesURL builds the request URL used to create the folder at path
func ResourcesURL(baseURL, path string) string {
	params := url.Values{}
	params.Set("path", path)
	return strings.TrimRight(baseURL, "/") + ResourcesPath + "?" + params.Encode()
}

// UploadURL builds the request URL asking the service to fetch sourceURL into
// folder/fileName on its side.
func UploadURL(baseURL, folder, fileName, sourceURL string) string {
	params := url.Values{}
	params.Set("path", RemotePath(folder, fileName))
	params.Set("url", sourceURL)
	return strings.TrimRight(baseURL, "/") + UploadPath + "?" + params.Encode()
}

// RemotePath joins a folder and a file name the way the disk expects them
func RemotePath(folder, fileName string) string {
	return strings.TrimRight(folder, "/") + "/" + fileName
}

// FolderName returns the backup folder for a VK user
func FolderName(prefix, userID string) string {
	return prefix + userID
}

// redactURL strips the query of the url parameter, a signed photo link, so
// request URLs can be logged
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if !q.Has("url") {
		return raw
	}

	source, err := url.Parse(q.Get("url"))
	if err != nil {
		q.Set("url", "***")
	} else if source.RawQuery != "" || source.Fragment != "" {
		source.RawQuery = "***"
		source.Fragment = ""
		q.Set("url", source.String())
	}
	u.RawQuery = q.Encode()
	return u.String()
}
