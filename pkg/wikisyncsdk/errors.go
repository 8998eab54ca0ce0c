package wikisyncsdk

import (
	"errors"

	"github.com/osvaldoandrade/wikisync/internal/app/gitsync"
	"github.com/osvaldoandrade/wikisync/internal/app/paths"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

var ErrNoVolumes = errors.New("wikisync-sdk: at least one volume is required")

// Engine errors, comparable with errors.Is.
var (
	ErrVolumeNotFound    = domain.ErrVolumeNotFound
	ErrVolumeUnavailable = domain.ErrVolumeUnavailable
	ErrRemoteNotFound    = domain.ErrRemoteNotFound
	ErrNoCredentials     = domain.ErrNoCredentials
	ErrAuthRejected      = domain.ErrAuthRejected
	ErrTransport         = domain.ErrTransport
	ErrNonFastForward    = domain.ErrNonFastForward
	ErrDetachedHead      = domain.ErrDetachedHead
	ErrNoUpstream        = domain.ErrNoUpstream
	ErrMergeConflict     = domain.ErrMergeConflict
	ErrUnsupportedMerge  = domain.ErrUnsupportedMerge
	ErrSignature         = domain.ErrSignature
	ErrPathOutsideVolume = paths.ErrPathOutsideVolume
	ErrMessageRequired   = gitsync.ErrCommitMessageRequired
	ErrNoFilesToCommit   = gitsync.ErrNoFilesToCommit
)
