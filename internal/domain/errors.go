package domain

import "errors"

var (
	// ErrNoInput is returned when neither an uploaded PDF nor pasted text can be found.
	ErrNoInput = errors.New("no input found")
	// ErrUnreadableContent indicates the input carried too little text to work with.
	ErrUnreadableContent = errors.New("no readable text found")
	// ErrRenderFailed wraps renderer failures.
	ErrRenderFailed = errors.New("render failed")
	// ErrMalformedRecord marks a listing record that cannot be parsed.
	ErrMalformedRecord = errors.New("malformed question record")
	// ErrRunInProgress is returned when another run holds the run lock.
	ErrRunInProgress = errors.New("a quiz run is already in progress")
	// ErrRunNotFound indicates an unknown run ID.
	ErrRunNotFound = errors.New("run not found")
	// ErrNoSentences is returned by the ranker when there is nothing to rank.
	ErrNoSentences = errors.New("no sentences to rank")
	// ErrNoConvergence is returned when centrality scores fail to settle.
	ErrNoConvergence = errors.New("sentence ranking did not converge")
)
