package volume

import (
	"context"
	"time"

	"github.com/osvaldoandrade/wikisync/internal/domain"
)

// Validator checks that a root is a usable working tree.
type Validator interface {
	Validate(ctx context.Context, root string) error
}

// Recorder persists the outcome of every operation run through the registry.
type Recorder interface {
	Record(ctx context.Context, entry domain.JournalEntry) error
}

type IDGenerator interface {
	NewID() (string, error)
}

type Clock interface {
	Now() time.Time
}
