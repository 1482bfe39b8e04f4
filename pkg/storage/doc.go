// Package storage persists the manifest of photos accepted by the disk.
//
// The Manifest type collects one Record per accepted upload in the order the
// uploads happened and writes them as a JSON array:
//
//	manifest := storage.NewManifest("uploaded_photos.json")
//	manifest.Append(storage.Record{FileName: "10.jpg", SizeTag: "z"})
//	if err := manifest.Save(); err != nil {
//	    log.Printf("Failed to save manifest: %v", err)
//	}
//
// Features:
//   - Four-space indentation, UTF-8 output with non-ASCII text kept as-is
//   - An empty run is saved as []
//   - Atomic file writes using a temporary file and rename
//   - Safe for concurrent use
package storage
