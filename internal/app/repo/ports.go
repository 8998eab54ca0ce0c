package repo

import "context"

type Store interface {
	Init(ctx context.Context, root, branch string) error
	SetRemote(ctx context.Context, root, name, url string) error
	SetUpstream(ctx context.Context, root, branch, remote string) error
}

type Cloner interface {
	Clone(ctx context.Context, url, root string) error
}
