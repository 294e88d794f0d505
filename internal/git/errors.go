package git

import "errors"

var (
	// ErrCloneFailed indicates cloning a repository into the workspace failed.
	// Acquisition failures are fatal to the whole run, unlike per-repository
	// extraction failures.
	ErrCloneFailed = errors.New("repository clone failed")

	// ErrUpdateFailed indicates updating an existing clone failed.
	ErrUpdateFailed = errors.New("repository update failed")

	// ErrLocalPathMissing indicates a configured local repository path does not exist.
	ErrLocalPathMissing = errors.New("local repository path does not exist")
)
