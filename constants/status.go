package constants

// RunStatus is the canonical status for rows in import_runs.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning        RunStatus = "RUNNING"
	RunStatusNotControlFile RunStatus = "NOT_CONTROL_FILE"
	RunStatusCompleted      RunStatus = "COMPLETED" // finished, possibly with per-record failures
	RunStatusFailed         RunStatus = "FAILED"    // run-level failure, nothing persisted
)

// ReservationSource marks how a reservation entered the store.
const ReservationSourceControlFile = "control-file"
