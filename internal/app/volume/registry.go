package volume

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/osvaldoandrade/wikisync/internal/domain"
	"github.com/osvaldoandrade/wikisync/internal/platform"
)

// State is the registry's handle on one volume. The root never changes
// after registration; lock serializes every operation on it.
type State struct {
	volume  domain.Volume
	openErr error
	lock    *semaphore.Weighted
}

func (s *State) Name() string {
	return s.volume.Name
}

func (s *State) Root() string {
	return s.volume.Root
}

type Info struct {
	Name      string
	Root      string
	Available bool
	Err       error
}

type Options struct {
	PoolSize int
	Recorder Recorder
	IDs      IDGenerator
	Clock    Clock
}

type Registry struct {
	states   map[string]*State
	pool     *Pool
	recorder Recorder
	ids      IDGenerator
	clock    Clock
}

// NewRegistry validates every volume once. Volumes whose root is not a
// working tree are kept but fail closed: each operation returns the open
// error.
func NewRegistry(ctx context.Context, volumes []domain.Volume, validator Validator, opts Options) (*Registry, error) {
	r := &Registry{
		states:   make(map[string]*State, len(volumes)),
		pool:     NewPool(opts.PoolSize),
		recorder: opts.Recorder,
		ids:      opts.IDs,
		clock:    opts.Clock,
	}
	if r.clock == nil {
		r.clock = platform.RealClock{}
	}

	for _, vol := range volumes {
		name := strings.TrimSpace(vol.Name)
		if name == "" {
			return nil, ErrVolumeNameRequired
		}
		root := strings.TrimSpace(vol.Root)
		if root == "" {
			return nil, fmt.Errorf("volume %s: %w", name, ErrVolumeRootRequired)
		}
		if _, exists := r.states[name]; exists {
			return nil, fmt.Errorf("volume %s: %w", name, ErrDuplicateVolume)
		}

		state := &State{
			volume: domain.Volume{Name: name, Root: filepath.Clean(root)},
			lock:   semaphore.NewWeighted(1),
		}
		if err := validator.Validate(ctx, state.volume.Root); err != nil {
			state.openErr = fmt.Errorf("volume %s: %w: %w", name, domain.ErrVolumeUnavailable, err)
			slog.Warn("volume unavailable", "volume", name, "root", state.volume.Root, "err", err)
		}
		r.states[name] = state
	}
	return r, nil
}

func (r *Registry) Lookup(name string) (*State, error) {
	state, ok := r.states[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("volume %q: %w", name, domain.ErrVolumeNotFound)
	}
	if state.openErr != nil {
		return nil, state.openErr
	}
	return state, nil
}

// List reports every configured volume sorted by name.
func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.states))
	for _, state := range r.states {
		infos = append(infos, Info{
			Name:      state.volume.Name,
			Root:      state.volume.Root,
			Available: state.openErr == nil,
			Err:       state.openErr,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Unavailable returns the volumes that failed validation.
func (r *Registry) Unavailable() []Info {
	var out []Info
	for _, info := range r.List() {
		if !info.Available {
			out = append(out, info)
		}
	}
	return out
}

func (r *Registry) Pool() *Pool {
	return r.pool
}
