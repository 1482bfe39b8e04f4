package backup

// State is a step of a backup run. A run moves strictly forward through the
// states and stops at the first one that fails.
type State int

const (
	StateCollectInput State = iota
	StateFetchPhotos
	StateCreateFolder
	StateUploadLoop
	StatePersistManifest
	StateDone
)

var stateNames = [...]string{
	StateCollectInput:    "collect_input",
	StateFetchPhotos:     "fetch_photos",
	StateCreateFolder:    "create_folder",
	StateUploadLoop:      "upload_loop",
	StatePersistManifest: "persist_manifest",
	StateDone:            "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
