package jobs

// Job is a long running daemon job. Process blocks until Stop is called.
type Job interface {
	Process()
	Stop()
}
