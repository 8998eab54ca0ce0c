package domain

import "strings"

// DefaultRemote is the only remote the sync workflows talk to.
const DefaultRemote = "origin"

type Volume struct {
	Name string
	Root string
}

func (v Volume) IsZero() bool {
	return strings.TrimSpace(v.Name) == "" && strings.TrimSpace(v.Root) == ""
}

type Operation string

const (
	OpStatus     Operation = "status"
	OpFetch      Operation = "fetch"
	OpPull       Operation = "pull"
	OpPush       Operation = "push"
	OpCommit     Operation = "commit"
	OpRestore    Operation = "restore"
	OpGC         Operation = "gc"
	OpAbortMerge Operation = "abort_merge"
)
