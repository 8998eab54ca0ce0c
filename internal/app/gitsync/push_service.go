package gitsync

import "context"

type PushService struct {
	pusher Pusher
}

func NewPushService(pusher Pusher) *PushService {
	return &PushService{pusher: pusher}
}

func (s *PushService) Push(ctx context.Context, root string) error {
	return s.pusher.Push(ctx, root)
}
