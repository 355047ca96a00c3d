package testutil

import (
	"sync"
)

// Faults scripts failures for named store operations
type Faults struct {
	mu    sync.Mutex
	errs  map[string]error
	times map[string]int
}

func newFaults() *Faults {
	return &Faults{errs: map[string]error{}, times: map[string]int{}}
}

// Fail makes op return err on every call
func (f *Faults) Fail(op string, err error) {
	f.FailTimes(op, err, -1)
}

// FailTimes makes op return err on the next n calls; n < 0 fails forever
func (f *Faults) FailTimes(op string, err error, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op] = err
	f.times[op] = n
}

func (f *Faults) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = map[string]error{}
	f.times = map[string]int{}
}

func (f *Faults) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err, ok := f.errs[op]
	if !ok {
		return nil
	}
	if n := f.times[op]; n > 0 {
		if n == 1 {
			delete(f.errs, op)
			delete(f.times, op)
		} else {
			f.times[op] = n - 1
		}
	}
	return err
}
