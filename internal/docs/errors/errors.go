// Package errors provides sentinel errors for documentation extraction.
// These enable consistent classification of per-repository failures, which are
// recoverable at the orchestration level.
package errors

import "errors"

var (
	// ErrRepositoryNotFound indicates the resolved local root of a repository does not exist.
	ErrRepositoryNotFound = errors.New("repository root not found")

	// ErrSectionWalkFailed indicates filesystem traversal of a section candidate path failed.
	ErrSectionWalkFailed = errors.New("section directory walk failed")

	// ErrFileReadFailed indicates reading content from a matched documentation file failed.
	ErrFileReadFailed = errors.New("documentation file read failed")

	// ErrInvalidRelativePath indicates calculating a path relative to the section root failed.
	ErrInvalidRelativePath = errors.New("invalid relative path calculation")
)
