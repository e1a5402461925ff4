package modeldb

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestDB creates a DB with deterministic ids and closes it with the
// test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db := New(WithIDGenerator(&FixedGenerator{}))
	t.Cleanup(db.Close)
	return db
}

// mustTransact runs a mutation body and fails the test on any error.
func mustTransact(t *testing.T, db *DB, fn func()) {
	t.Helper()
	require.NoError(t, db.Transact(func() error {
		fn()
		return nil
	}))
}

// delivery is one observed signal emission: the object whose signal
// fired and the args it carried.
type delivery struct {
	receiver Object
	args     ChangedArgs
}

// recorder collects deliveries across any number of watched objects in
// arrival order. Safe for use from the notifier goroutine.
type recorder struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (r *recorder) watch(obj Object) {
	obj.Changed().Connect(func(args ChangedArgs) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.deliveries = append(r.deliveries, delivery{receiver: obj, args: args})
	})
}

func (r *recorder) all() []delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]delivery, len(r.deliveries))
	copy(out, r.deliveries)
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = nil
}
