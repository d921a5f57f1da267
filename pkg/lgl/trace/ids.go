package trace

import (
	"math/rand/v2"

	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
)

// Trace ids are always six digits.
const (
	MinID = 100000
	MaxID = 999999

	poolSize = MaxID - MinID + 1
)

// DefaultIDRetries is how many random draws Next makes before probing.
const DefaultIDRetries = 64

// IDPool issues unique six-digit ids.
//
// Next draws at random and redraws on collision, up to Retries times.
// After that it walks forward from the last draw to the first free id,
// so a nearly full pool still finishes in bounded time. IDPool is not
// safe for concurrent use; Recorder serializes access to it.
type IDPool struct {
	issued  map[int]struct{}
	Retries int

	// intn returns a value in [0, n). Replaced in tests.
	intn func(n int) int
}

// NewIDPool creates an empty pool.
func NewIDPool() *IDPool {
	return &IDPool{
		issued:  make(map[int]struct{}),
		Retries: DefaultIDRetries,
		intn:    rand.IntN,
	}
}

// Next returns an id that has not been issued before.
// It fails with TRACE-0002 once all 900000 ids are in use.
func (p *IDPool) Next() (int, error) {
	if len(p.issued) >= poolSize {
		return 0, lerrors.New(lerrors.CodeIDPoolExhausted, map[string]any{"Issued": len(p.issued)})
	}

	id := MinID + p.intn(poolSize)
	for i := 0; i < p.Retries && p.has(id); i++ {
		id = MinID + p.intn(poolSize)
	}

	for p.has(id) {
		id++
		if id > MaxID {
			id = MinID
		}
	}

	p.issued[id] = struct{}{}
	return id, nil
}

// Len returns the number of ids issued so far.
func (p *IDPool) Len() int { return len(p.issued) }

// Reserve marks id as issued without drawing it. Ids outside the six-digit
// range are ignored.
func (p *IDPool) Reserve(id int) {
	if id < MinID || id > MaxID {
		return
	}
	p.issued[id] = struct{}{}
}

func (p *IDPool) has(id int) bool {
	_, ok := p.issued[id]
	return ok
}
