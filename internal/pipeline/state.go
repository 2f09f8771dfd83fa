package pipeline

// State is the phase of the current or most recent batch run.
type State int32

const (
	StateIdle State = iota
	StateFilesDiscovered
	StateTasksProcessing
	StateImagesWritten
	StateProfilePersisted
	StateComplete
	StateFailed
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StateFilesDiscovered:  "files_discovered",
	StateTasksProcessing:  "tasks_processing",
	StateImagesWritten:    "images_written",
	StateProfilePersisted: "profile_persisted",
	StateComplete:         "complete",
	StateFailed:           "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
