package drill

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource hands out element and frame identifiers. Identifiers are never reused.
type IDSource interface {
	NewID() string
}

// UUIDSource issues random UUIDv4 identifiers.
type UUIDSource struct{}

func (UUIDSource) NewID() string { return uuid.NewString() }

// SequenceSource issues prefix-1, prefix-2, ... and is mostly useful in tests
// and for loading scenario files deterministically.
type SequenceSource struct {
	Prefix string
	n      atomic.Uint64
}

func (s *SequenceSource) NewID() string {
	return fmt.Sprintf("%s%d", s.Prefix, s.n.Add(1))
}
