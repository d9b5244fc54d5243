package rpcflow

import (
	"context"
	"sync"
)

// Key identifies the one flow a user may have open in a chat.
type Key struct {
	ChatID int64
	UserID int64
}

type Registry struct {
	mu    sync.Mutex
	byKey map[Key]*Flow
	byID  map[string]*Flow
	wg    sync.WaitGroup
}

func NewRegistry() *Registry {
	return &Registry{
		byKey: make(map[Key]*Flow),
		byID:  make(map[string]*Flow),
	}
}

// Launch registers f under key and runs it on its own goroutine. It reports
// false, without starting f, when key already has an active flow.
func (r *Registry) Launch(ctx context.Context, key Key, f *Flow, onDone func(State, error)) bool {
	r.mu.Lock()
	if _, busy := r.byKey[key]; busy {
		r.mu.Unlock()
		return false
	}
	r.byKey[key] = f
	r.byID[f.ID()] = f
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		state, err := f.Run(ctx)
		r.remove(key, f)
		if onDone != nil {
			onDone(state, err)
		}
	}()
	return true
}

func (r *Registry) remove(key Key, f *Flow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byKey[key] == f {
		delete(r.byKey, key)
	}
	delete(r.byID, f.ID())
}

func (r *Registry) ByID(id string) (*Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[id]
	return f, ok
}

func (r *Registry) ByKey(key Key) (*Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byKey[key]
	return f, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKey)
}

// Wait blocks until every launched flow has returned.
func (r *Registry) Wait() {
	r.wg.Wait()
}
