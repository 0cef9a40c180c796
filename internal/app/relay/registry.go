package relay

import (
	"sort"
	"sync"

	"relaychat/internal/pkg/errs"
)

// entry is one admitted connection. seq records admission order.
type entry struct {
	handle   Handle
	identity string
	seq      uint64
}

// Registry maps live, authenticated connection handles to their identities.
// It is the single source of truth for who is online. An identity may be
// registered under several handles at once.
type Registry struct {
	// mu guards entries and nextSeq.
	mu sync.RWMutex

	entries map[Handle]*entry

	nextSeq uint64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[Handle]*entry),
	}
}

// Insert admits handle under identity. It fails with ErrDuplicateHandle if the
// handle is already registered and ErrInvariantViolation for an empty identity.
func (r *Registry) Insert(handle Handle, identity string) *errs.CustomError {
	if identity == "" {
		return errs.NewError(errs.ErrInvariantViolation, "empty identity on insert")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[handle]; ok {
		return errs.NewError(errs.ErrDuplicateHandle, handle.ID())
	}

	r.nextSeq++
	r.entries[handle] = &entry{
		handle:   handle,
		identity: identity,
		seq:      r.nextSeq,
	}

	return nil
}

// Remove deletes handle and returns the identity it was registered under.
// ok is false when the handle is not registered; removing twice is safe.
func (r *Registry) Remove(handle Handle) (identity string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[handle]
	if !ok {
		return "", false
	}

	delete(r.entries, handle)
	return e.identity, true
}

// Identity returns the identity recorded for handle.
func (r *Registry) Identity(handle Handle) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[handle]
	if !ok {
		return "", false
	}
	return e.identity, true
}

// Len returns the number of registered handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// SnapshotIdentities returns the distinct registered identities in order of each
// identity's earliest live admission. The result is never nil.
func (r *Registry) SnapshotIdentities() []string {
	ordered := r.ordered()

	seen := make(map[string]struct{}, len(ordered))
	identities := make([]string, 0, len(ordered))

	for _, e := range ordered {
		if _, dup := seen[e.identity]; dup {
			continue
		}
		seen[e.identity] = struct{}{}
		identities = append(identities, e.identity)
	}

	return identities
}

// ForEachHandle calls f for every handle registered at the time of the call, in
// admission order. f runs outside the lock, so it may call back into the Registry
// and must tolerate handles that disconnect while iteration is in progress.
func (r *Registry) ForEachHandle(f func(Handle)) {
	for _, e := range r.ordered() {
		f(e.handle)
	}
}

// Clear removes every entry and returns the handles that were registered.
func (r *Registry) Clear() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	handles := make([]Handle, 0, len(r.entries))
	for h := range r.entries {
		handles = append(handles, h)
	}
	r.entries = make(map[Handle]*entry)

	return handles
}

// ordered copies the entries under the read lock and sorts them by admission.
func (r *Registry) ordered() []entry {
	r.mu.RLock()
	snapshot := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		snapshot = append(snapshot, *e)
	}
	r.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].seq < snapshot[j].seq
	})

	return snapshot
}
