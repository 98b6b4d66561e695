package pool

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// task is a unit of work handed to an idle worker.
type task func()

// Pool represents a pool of workers, used to run the independent repetitions of a proof,
// or to search for primes, in parallel.
//
// Functions needing a *Pool will work with a nil receiver, doing the equivalent
// work on the current goroutine instead.
type Pool struct {
	tasks       chan task
	workerCount int
	closeOnce   sync.Once
}

// NewPool creates a new pool, with a certain number of workers.
//
// If count <= 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		tasks:       make(chan task),
		workerCount: count,
	}
	for i := 0; i < count; i++ {
		go func() {
			for t := range p.tasks {
				t()
			}
		}()
	}
	return p
}

// TearDown stops the workers. The pool must not be used afterwards.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() {
		close(p.tasks)
	})
}

// Parallelize calls a function count times, passing in indices from 0..count-1.
//
// The result will be a slice containing [f(0), f(1), ..., f(count - 1)].
func (p *Pool) Parallelize(count int, f func(int) interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := range results {
			results[i] = f(i)
		}
		return results
	}

	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		i := i
		p.tasks <- func() {
			defer wg.Done()
			results[i] = f(i)
		}
	}
	wg.Wait()
	return results
}

// Search queries the function f, until count successes are found.
//
// f is supposed to try a single candidate, returning nil if that candidate isn't
// successful. The first error returned by f stops every worker, and is returned
// in place of the results.
//
// The result will be a slice containing the first count successes.
func (p *Pool) Search(count int, f func() (interface{}, error)) ([]interface{}, error) {
	results := make([]interface{}, count)
	if p == nil {
		for i := range results {
			for results[i] == nil {
				res, err := f()
				if err != nil {
					return nil, err
				}
				results[i] = res
			}
		}
		return results, nil
	}

	// remaining is decremented once per success, and the slot it lands on is
	// owned by the worker that claimed it.
	remaining := int64(count)
	var (
		stopped  int32
		firstErr error
		errOnce  sync.Once
		wg       sync.WaitGroup
	)
	wg.Add(p.workerCount)
	for w := 0; w < p.workerCount; w++ {
		p.tasks <- func() {
			defer wg.Done()
			for atomic.LoadInt32(&stopped) == 0 && atomic.LoadInt64(&remaining) > 0 {
				res, err := f()
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					atomic.StoreInt32(&stopped, 1)
					return
				}
				if res == nil {
					continue
				}
				slot := atomic.AddInt64(&remaining, -1)
				if slot < 0 {
					return
				}
				results[slot] = res
			}
		}
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// LockedReader wraps an io.Reader to be safe for concurrent reads.
//
// When reading concurrently, which caller gets which bytes is raced, but no
// byte of the underlying stream is handed out twice.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

// Read implements io.Reader for LockedReader.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
