package kvstore

import (
	"raptodb/internal/object"
	"raptodb/internal/xxfinger"
)

// Store is an ordered sequence of Objects with a byte capacity budget.
// Index 0 is the least-recently-used ("cold") end; the highest index is the
// most-recently-used ("hot") end. It is not safe for concurrent use: per
// spec.md §5 it is confined to a single executor goroutine and needs no
// internal lock.
type Store struct {
	objects      []object.Object
	capRemaining uint64
	initialCap   uint64
	clock        Clock
}

// New creates an empty Store with the given byte capacity.
func New(capacity uint64) *Store {
	return NewWithClock(capacity, SystemClock())
}

// NewWithClock creates an empty Store using clock for metadata timestamps.
// Production code should use New; tests use this to inject a deterministic
// Clock.
func NewWithClock(capacity uint64, clock Clock) *Store {
	return &Store{
		capRemaining: capacity,
		initialCap:   capacity,
		clock:        clock,
	}
}

// Len returns the number of live objects.
func (s *Store) Len() int { return len(s.objects) }

// CapRemaining returns the current byte capacity budget.
func (s *Store) CapRemaining() uint64 { return s.capRemaining }

// InitialCapacity returns the capacity the Store was constructed with.
func (s *Store) InitialCapacity() uint64 { return s.initialCap }

// find performs the advanced-compare linear scan from hot end to cold end
// (§4.2 "Search") with no side effects: no promotion, no metadata touch.
func (s *Store) find(key []byte) (int, bool) {
	for i := len(s.objects) - 1; i >= 0; i-- {
		if xxfinger.Equal(s.objects[i].Key, key) {
			return i, true
		}
	}

	return 0, false
}

// promote applies the transposition heuristic: swap the hit at i with its
// hotter neighbor and return the new index, or return i unchanged if it was
// already hot-most.
func (s *Store) promote(i int) int {
	last := len(s.objects) - 1
	if i == last {
		return i
	}

	s.objects[i], s.objects[i+1] = s.objects[i+1], s.objects[i]

	return i + 1
}

// Search locates key, touches its metadata (a read/write hit), applies the
// transposition promotion, and returns its post-promotion index. This is
// the operation §8's invariants are stated against.
func (s *Store) Search(key []byte) (int, bool) {
	idx, found := s.find(key)
	if !found {
		return 0, false
	}

	s.objects[idx].Metadata.Touch(s.clock.NowMicros())

	return s.promote(idx), true
}

// Get is Search plus dereferencing the hit. The returned pointer aliases
// Store-owned storage and is only valid until the next mutation.
func (s *Store) Get(key []byte) (*object.Object, bool) {
	idx, found := s.Search(key)
	if !found {
		return nil, false
	}

	return &s.objects[idx], true
}

// Contains reports whether key is present, with no promotion and no
// metadata touch (backs the CHECK command, a pure existence probe).
func (s *Store) Contains(key []byte) bool {
	_, found := s.find(key)
	return found
}

// Put inserts key/field as a new hot-end object, or updates the existing
// object for key in place (§4.2 "Insertion"/"Update"). It returns the
// resulting index.
func (s *Store) Put(key []byte, field object.Field) (int, error) {
	if idx, found := s.find(key); found {
		return s.update(idx, field)
	}

	return s.insert(key, field)
}

func (s *Store) insert(key []byte, field object.Field) (int, error) {
	obj := object.Object{
		Key:   append([]byte(nil), key...),
		Field: copyField(field),
	}
	obj.Metadata.Touch(s.clock.NowMicros())

	size := object.Size(&obj)

	newCap, ok := subCap(s.capRemaining, size)
	if !ok {
		return 0, ErrExceededSpaceLimit
	}

	s.capRemaining = newCap
	s.objects = append(s.objects, obj)

	return len(s.objects) - 1, nil
}

func (s *Store) update(idx int, field object.Field) (int, error) {
	existing := &s.objects[idx]

	if existing.Field.Tag == field.Tag {
		applySameTypeUpdate(existing, field)
		existing.Metadata.Touch(s.clock.NowMicros())

		return idx, nil
	}

	return s.updateDifferentType(idx, field)
}

// applySameTypeUpdate overwrites value in place. Integer/decimal overwrite
// the scalar; string reallocates only when the length changes (§4.2).
//
// Capacity is NOT recomputed here even when a string's length changes -
// this is the documented gap of spec.md §9 open question 2, preserved
// rather than silently fixed (see DESIGN.md).
func applySameTypeUpdate(existing *object.Object, field object.Field) {
	switch field.Tag {
	case object.TagInteger:
		existing.Field.Integer = field.Integer
	case object.TagDecimal:
		existing.Field.Decimal = field.Decimal
	case object.TagString:
		if len(existing.Field.Str) != len(field.Str) {
			existing.Field.Str = append([]byte(nil), field.Str...)
		} else {
			copy(existing.Field.Str, field.Str)
		}
	}
}

func (s *Store) updateDifferentType(idx int, field object.Field) (int, error) {
	existing := s.objects[idx]
	oldSize := object.Size(&existing)

	replacement := object.Object{
		Key:      existing.Key,
		Field:    copyField(field),
		Metadata: existing.Metadata,
	}
	newSize := object.Size(&replacement)

	tentative, ok := addCap(s.capRemaining, oldSize)
	if !ok {
		return 0, ErrExceededSpaceLimit
	}

	tentative, ok = subCap(tentative, newSize)
	if !ok {
		return 0, ErrExceededSpaceLimit
	}

	replacement.Metadata.Touch(s.clock.NowMicros())
	s.capRemaining = tentative
	s.objects[idx] = replacement

	return idx, nil
}

func copyField(f object.Field) object.Field {
	if f.Tag == object.TagString {
		f.Str = append([]byte(nil), f.Str...)
	}

	return f
}

// RemoveAt evicts the object at index, crediting its size back to
// cap_remaining.
func (s *Store) RemoveAt(index int) error {
	if index < 0 || index >= len(s.objects) {
		return ErrIndexOutOfRange
	}

	size := object.Size(&s.objects[index])

	newCap, ok := addCap(s.capRemaining, size)
	if !ok {
		return ErrExceededSpaceLimit
	}

	s.capRemaining = newCap
	s.objects = append(s.objects[:index], s.objects[index+1:]...)

	return nil
}

// RemoveKey locates key (without promoting it - it is about to be deleted)
// and evicts it.
func (s *Store) RemoveKey(key []byte) error {
	idx, found := s.find(key)
	if !found {
		return ErrKeyNotFound
	}

	return s.RemoveAt(idx)
}

// Rename replaces the key bytes of the slot holding oldKey with newKey.
func (s *Store) Rename(oldKey, newKey []byte) error {
	idx, found := s.find(oldKey)
	if !found {
		return ErrKeyNotFound
	}

	if s.Contains(newKey) {
		return ErrKeyReplacementExist
	}

	s.objects[idx].Key = append([]byte(nil), newKey...)

	return nil
}

// ListKeys returns all keys, hot end first (most-recently-used to
// least-recently-used), matching the LIST command's response order.
func (s *Store) ListKeys() [][]byte {
	keys := make([][]byte, len(s.objects))
	for i, obj := range s.objects {
		keys[len(s.objects)-1-i] = obj.Key
	}

	return keys
}

// SwapWithHead implements the HEAD command: swap the target with the
// hot-end element. O(1), but it breaks global LRU order - see spec.md §9
// open question 5.
func (s *Store) SwapWithHead(key []byte) error {
	idx, found := s.find(key)
	if !found {
		return ErrKeyNotFound
	}

	last := len(s.objects) - 1
	s.objects[idx], s.objects[last] = s.objects[last], s.objects[idx]

	return nil
}

// SwapWithTail implements the TAIL command: swap the target with the
// cold-end element.
func (s *Store) SwapWithTail(key []byte) error {
	idx, found := s.find(key)
	if !found {
		return ErrKeyNotFound
	}

	s.objects[idx], s.objects[0] = s.objects[0], s.objects[idx]

	return nil
}

// MoveToHead implements the SHEAD command: remove and reinsert the target
// at the hot end, preserving the remainder's relative order.
func (s *Store) MoveToHead(key []byte) error {
	idx, found := s.find(key)
	if !found {
		return ErrKeyNotFound
	}

	obj := s.objects[idx]
	s.objects = append(s.objects[:idx], s.objects[idx+1:]...)
	s.objects = append(s.objects, obj)

	return nil
}

// MoveToTail implements the STAIL command: remove and reinsert the target
// at the cold end, preserving the remainder's relative order.
func (s *Store) MoveToTail(key []byte) error {
	idx, found := s.find(key)
	if !found {
		return ErrKeyNotFound
	}

	obj := s.objects[idx]
	s.objects = append(s.objects[:idx], s.objects[idx+1:]...)
	s.objects = append([]object.Object{obj}, s.objects...)

	return nil
}

// Prefetch stable-sorts the whole sequence ascending by LastAccess (least
// recent first, hot-most last), via insertion sort. Used after Load and by
// the SORT command.
func (s *Store) Prefetch() {
	for i := 1; i < len(s.objects); i++ {
		for j := i; j > 0 && s.objects[j-1].Metadata.LastAccess > s.objects[j].Metadata.LastAccess; j-- {
			s.objects[j-1], s.objects[j] = s.objects[j], s.objects[j-1]
		}
	}
}

// AppendLoaded appends obj exactly as given (preserving its metadata),
// debiting its size from cap_remaining. Used by the snapshot loader, which
// has already validated key uniqueness by construction (a freshly restored
// store).
func (s *Store) AppendLoaded(obj object.Object) error {
	size := object.Size(&obj)

	newCap, ok := subCap(s.capRemaining, size)
	if !ok {
		return ErrExceededSpaceLimit
	}

	s.capRemaining = newCap
	s.objects = append(s.objects, obj)

	return nil
}

// SetAccessTimes overwrites the access_times counter for key directly
// (the FREQ command's write form), applying the usual promotion since it
// counts as a hit. It reports whether key was found.
func (s *Store) SetAccessTimes(key []byte, n int64) (int, bool) {
	idx, found := s.find(key)
	if !found {
		return 0, false
	}

	s.objects[idx].Metadata.AccessTimes = n

	return s.promote(idx), true
}

// SetLastAccess overwrites the last_access timestamp for key directly (the
// LAST command's write form), applying the usual promotion.
func (s *Store) SetLastAccess(key []byte, n int64) (int, bool) {
	idx, found := s.find(key)
	if !found {
		return 0, false
	}

	s.objects[idx].Metadata.LastAccess = n

	return s.promote(idx), true
}

// Clear evicts every object and restores cap_remaining to the initial
// capacity (the ERASE command).
func (s *Store) Clear() {
	s.objects = s.objects[:0]
	s.capRemaining = s.initialCap
}

// ObjectAt returns a pointer to the object at index, for callers (the
// snapshot engine) that need to walk the sequence cold-to-hot without going
// through key lookup. idx must be in [0, Len()).
func (s *Store) ObjectAt(idx int) *object.Object {
	return &s.objects[idx]
}
