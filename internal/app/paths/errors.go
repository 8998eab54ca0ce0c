package paths

import "errors"

var (
	ErrRepoPathRequired  = errors.New("repo path is required")
	ErrPathRequired      = errors.New("file path is required")
	ErrPathOutsideVolume = errors.New("path is outside the volume")
)
