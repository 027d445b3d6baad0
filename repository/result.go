package repository

// Outcome classifies the result of syncing one repository.
type Outcome string

const (
	// Created means a fresh mirror clone was performed.
	Created Outcome = "created"
	// Updated means an existing local clone was refreshed.
	Updated Outcome = "updated"
	// Failed means a git invocation exited non-zero and the sync was
	// aborted for this repository.
	Failed Outcome = "failed"
)

// Result is the per repository outcome of a sync attempt. Err is only set
// when Outcome is Failed and carries the captured stdout/stderr of the
// failed git invocation.
type Result struct {
	Repo    string
	Outcome Outcome
	Err     error
}

// Success reports whether the sync completed without a hard failure.
func (r Result) Success() bool {
	return r.Outcome != Failed
}
