package gitsync

import "errors"

var ErrCommitMessageRequired = errors.New("commit message is required")
var ErrNoFilesToCommit = errors.New("no files to commit")
