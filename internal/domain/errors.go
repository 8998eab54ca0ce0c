package domain

import "errors"

var (
	ErrVolumeNotFound    = errors.New("volume not found")
	ErrVolumeUnavailable = errors.New("volume unavailable")
	ErrNotARepository    = errors.New("not a git working tree")
)

var (
	ErrRemoteNotFound = errors.New("remote 'origin' is not configured")
	ErrNoCredentials  = errors.New("no GIT_TOKEN provided in environment")
	ErrAuthRejected   = errors.New("authentication rejected by remote")
	ErrTransport      = errors.New("transport failure")
	ErrNonFastForward = errors.New("remote ahead; pull required")
)

var (
	ErrDetachedHead     = errors.New("HEAD is not on a branch")
	ErrNoHead           = errors.New("repository has no commits")
	ErrNoUpstream       = errors.New("no remote-tracking branch to pull from")
	ErrMergeConflict    = errors.New("merge conflicts: manual resolution required")
	ErrUnsupportedMerge = errors.New("unsupported merge: histories share no common ancestor")
	ErrMergeFailed      = errors.New("merge failed")
)

var (
	ErrPathNotFound = errors.New("path not found in volume")
	ErrSignature    = errors.New("invalid commit signature")
	ErrNoIdentity   = errors.New("user.name/user.email not configured")
	ErrIndexWrite   = errors.New("index write failed")
	ErrTreeWrite    = errors.New("tree write failed")
	ErrCommitWrite  = errors.New("commit write failed")
	ErrInternal     = errors.New("internal error")
)
