package repo

import "errors"

var ErrRepoURLRequired = errors.New("repo url is required")
var ErrClonePathRequired = errors.New("clone path is required")
var ErrInvalidBranch = errors.New("invalid branch name")
var ErrCloneTargetExists = errors.New("clone target is not empty")
