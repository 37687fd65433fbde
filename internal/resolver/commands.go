package resolver

import (
	"strconv"
	"strings"

	"raptodb/internal/kvstore"
	"raptodb/internal/object"
	"raptodb/internal/query"
)

func (r *Resolver) setTyped(args []byte, tag object.Tag) (Result, error) {
	key, valueRaw, hasValue := query.SplitFirst(args)
	if !hasValue {
		return Result{}, ErrMissingTokens
	}
	if !object.ValidKey(key) {
		return Result{}, object.ErrTypeOverflow
	}

	field, err := parseFieldValue(tag, valueRaw)
	if err != nil {
		return Result{}, err
	}

	existed := r.store.Contains(key)

	if _, err := r.store.Put(key, field); err != nil {
		return Result{}, err
	}

	if !existed {
		r.mem.RecordAlloc(object.Size(&object.Object{Key: key, Field: field}))
	}
	r.observeLive()

	return okResult([]byte("OK")), nil
}

func parseFieldValue(tag object.Tag, raw []byte) (object.Field, error) {
	switch tag {
	case object.TagInteger:
		v, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return object.Field{}, numericParseError(err)
		}
		return object.NewInteger(v), nil
	case object.TagDecimal:
		v, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return object.Field{}, numericParseError(err)
		}
		return object.NewDecimal(v), nil
	default:
		return object.NewString(append([]byte(nil), raw...)), nil
	}
}

func numericParseError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return object.ErrTypeOverflow
	}
	return ErrMismatchType
}

func (r *Resolver) update(args []byte) (Result, error) {
	key, numRaw, hasValue := query.SplitFirst(args)
	if !hasValue {
		return Result{}, ErrMissingTokens
	}

	obj, found := r.store.Get(key)
	if !found {
		return Result{}, kvstore.ErrKeyNotFound
	}

	var field object.Field

	switch obj.Field.Tag {
	case object.TagInteger:
		delta, err := strconv.ParseInt(string(numRaw), 10, 64)
		if err != nil {
			return Result{}, ErrMismatchType
		}
		field = object.NewInteger(saturatingAdd(obj.Field.Integer, delta))
	case object.TagDecimal:
		delta, err := strconv.ParseFloat(string(numRaw), 64)
		if err != nil {
			return Result{}, ErrMismatchType
		}
		field = object.NewDecimal(obj.Field.Decimal + delta)
	default:
		return Result{}, ErrMismatchType
	}

	if _, err := r.store.Put(key, field); err != nil {
		return Result{}, err
	}

	return okResult([]byte("OK")), nil
}

func saturatingAdd(a, b int64) int64 {
	sum := a + b
	// Overflow occurs iff the operands share a sign and the result's sign
	// differs from theirs.
	if a > 0 && b > 0 && sum < 0 {
		return 1<<63 - 1
	}
	if a < 0 && b < 0 && sum >= 0 {
		return -1 << 63
	}
	return sum
}

func (r *Resolver) rename(args []byte) (Result, error) {
	oldKey, newKey, hasValue := query.SplitFirst(args)
	if !hasValue {
		return Result{}, ErrMissingTokens
	}

	if err := r.store.Rename(oldKey, newKey); err != nil {
		return Result{}, err
	}

	return okResult([]byte("OK")), nil
}

func (r *Resolver) get(args []byte) (Result, error) {
	if len(args) == 0 {
		return Result{}, ErrMissingTokens
	}

	obj, found := r.store.Get(args)
	if !found {
		return Result{}, kvstore.ErrKeyNotFound
	}

	return okResult([]byte(formatValue(obj.Field))), nil
}

func (r *Resolver) typeOf(args []byte) (Result, error) {
	if len(args) == 0 {
		return Result{}, ErrMissingTokens
	}

	obj, found := r.store.Get(args)
	if !found {
		return Result{}, kvstore.ErrKeyNotFound
	}

	return okResult([]byte(obj.Field.Tag.String())), nil
}

func (r *Resolver) check(args []byte) (Result, error) {
	if len(args) == 0 {
		return Result{}, ErrMissingTokens
	}

	if r.store.Contains(args) {
		return okResult([]byte("1")), nil
	}
	return okResult([]byte("0")), nil
}

func (r *Resolver) list() (Result, error) {
	keys := r.store.ListKeys()
	if len(keys) == 0 {
		return Result{}, ErrNoKeysFound
	}

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}

	return okResult([]byte(strings.Join(parts, " "))), nil
}

func (r *Resolver) touch(args []byte) (Result, error) {
	if len(args) == 0 {
		return Result{}, ErrMissingTokens
	}

	if _, found := r.store.Search(args); !found {
		return Result{}, kvstore.ErrKeyNotFound
	}

	return okResult([]byte("OK")), nil
}

func (r *Resolver) moveCommand(args []byte, fn func([]byte) error) (Result, error) {
	if len(args) == 0 {
		return Result{}, ErrMissingTokens
	}

	if err := fn(args); err != nil {
		return Result{}, err
	}

	return okResult([]byte("OK")), nil
}

func (r *Resolver) counterCommand(args []byte, isFreq bool) (Result, error) {
	key, numRaw, hasValue := query.SplitFirst(args)
	if !hasValue {
		key = args
	}
	if len(key) == 0 {
		return Result{}, ErrMissingTokens
	}

	if hasValue {
		n, err := strconv.ParseInt(string(numRaw), 10, 64)
		if err != nil {
			return Result{}, ErrMismatchType
		}

		var found bool
		if isFreq {
			_, found = r.store.SetAccessTimes(key, n)
		} else {
			_, found = r.store.SetLastAccess(key, n)
		}
		if !found {
			return Result{}, kvstore.ErrKeyNotFound
		}

		return okResult([]byte(strconv.FormatInt(n, 10))), nil
	}

	obj, found := r.store.Get(key)
	if !found {
		return Result{}, kvstore.ErrKeyNotFound
	}

	if isFreq {
		return okResult([]byte(strconv.FormatInt(obj.Metadata.AccessTimes, 10))), nil
	}
	return okResult([]byte(strconv.FormatInt(obj.Metadata.LastAccess, 10))), nil
}

func (r *Resolver) idle(args []byte) (Result, error) {
	if len(args) == 0 {
		return Result{}, ErrMissingTokens
	}

	obj, found := r.store.Get(args)
	if !found {
		return Result{}, kvstore.ErrKeyNotFound
	}

	now := r.clock.NowMicros()
	idle := now - obj.Metadata.LastAccess
	if idle < 0 {
		return Result{}, ErrInvalidMetadata
	}

	return okResult([]byte(strconv.FormatInt(idle, 10))), nil
}

func (r *Resolver) lenOf(args []byte) (Result, error) {
	if len(args) == 0 {
		return Result{}, ErrMissingTokens
	}

	obj, found := r.store.Get(args)
	if !found {
		return Result{}, kvstore.ErrKeyNotFound
	}

	if obj.Field.Tag == object.TagString {
		return okResult([]byte(strconv.Itoa(len(obj.Field.Str)))), nil
	}
	return okResult([]byte("8")), nil
}

func (r *Resolver) sizeOf(args []byte) (Result, error) {
	if len(args) == 0 {
		return Result{}, ErrMissingTokens
	}

	obj, found := r.store.Get(args)
	if !found {
		return Result{}, kvstore.ErrKeyNotFound
	}

	return okResult([]byte(strconv.FormatUint(sizeReport(args, obj.Field), 10))), nil
}

func (r *Resolver) memCommand(args []byte) (Result, error) {
	live := r.store.InitialCapacity() - r.store.CapRemaining()

	switch strings.ToUpper(string(args)) {
	case "LIVE":
		return okResult([]byte(strconv.FormatUint(live, 10))), nil
	case "PEAK":
		return okResult([]byte(strconv.FormatUint(r.mem.Snapshot(live).Peak, 10))), nil
	case "TOTAL":
		return okResult([]byte(strconv.FormatUint(r.mem.Snapshot(live).Total, 10))), nil
	case "ALLOC":
		return okResult([]byte(strconv.FormatUint(r.mem.Snapshot(live).Allocs, 10))), nil
	case "FREE":
		return okResult([]byte(strconv.FormatUint(r.mem.Snapshot(live).Frees, 10))), nil
	case "RESET-PEAK":
		r.mem.ResetPeak()
		return okResult([]byte("0")), nil
	case "RESET-TOTAL":
		r.mem.ResetTotal()
		return okResult([]byte("0")), nil
	case "RESET-COUNT":
		r.mem.ResetCount()
		return okResult([]byte("0")), nil
	default:
		return Result{}, ErrUnknownArgument
	}
}

func (r *Resolver) dbCommand(args []byte) (Result, error) {
	switch strings.ToUpper(string(args)) {
	case "NAME":
		return okResult([]byte(r.dbName)), nil
	case "CAP":
		return okResult([]byte(strconv.FormatUint(r.store.InitialCapacity(), 10))), nil
	case "SIZE":
		live := r.store.InitialCapacity() - r.store.CapRemaining()
		return okResult([]byte(strconv.FormatUint(live, 10))), nil
	default:
		return Result{}, ErrUnknownArgument
	}
}

func (r *Resolver) dump(args []byte) (Result, error) {
	if len(args) == 0 {
		return Result{}, ErrMissingTokens
	}

	obj, found := r.store.Get(args)
	if !found {
		return Result{}, kvstore.ErrKeyNotFound
	}

	raw, err := object.Serialize(obj)
	if err != nil {
		return Result{}, ErrInvalidObject
	}

	return okResult(raw), nil
}

func (r *Resolver) restore(args []byte) (Result, error) {
	obj, err := object.Deserialize(args)
	if err != nil {
		return Result{}, ErrInvalidObject
	}
	obj.Key = append([]byte(nil), obj.Key...)
	if obj.Field.Tag == object.TagString {
		obj.Field.Str = append([]byte(nil), obj.Field.Str...)
	}

	if r.store.Contains(obj.Key) {
		if err := r.store.RemoveKey(obj.Key); err != nil {
			return Result{}, ErrInvalidObject
		}
	}

	if err := r.store.AppendLoaded(obj); err != nil {
		return Result{}, ErrInvalidObject
	}

	r.mem.RecordAlloc(object.Size(&obj))
	r.observeLive()

	return okResult([]byte("OK")), nil
}

func (r *Resolver) erase() (Result, error) {
	r.store.Clear()
	r.observeLive()
	return okResult([]byte("OK")), nil
}

func (r *Resolver) del(args []byte) (Result, error) {
	if len(args) == 0 {
		return Result{}, ErrMissingTokens
	}

	if err := r.store.RemoveKey(args); err != nil {
		return Result{}, err
	}

	r.mem.RecordFree()
	r.observeLive()

	return okResult([]byte("OK")), nil
}

func (r *Resolver) save() (Result, error) {
	if r.engine == nil {
		return okResult([]byte("OK")), nil
	}

	if err := r.engine.Save(r.store); err != nil {
		return Result{}, ErrSaveFailed
	}

	return okResult([]byte("OK")), nil
}

func (r *Resolver) copy(args []byte) (Result, error) {
	src, dst, hasValue := query.SplitFirst(args)
	if !hasValue {
		return Result{}, ErrMissingTokens
	}

	obj, found := r.store.Get(src)
	if !found {
		return Result{}, kvstore.ErrKeyNotFound
	}

	field := cloneField(obj.Field)
	if _, err := r.store.Put(dst, field); err != nil {
		return Result{}, ErrInvalidObject
	}

	r.mem.RecordAlloc(object.Size(&object.Object{Key: dst, Field: field}))
	r.observeLive()

	return okResult([]byte("OK")), nil
}

func cloneField(f object.Field) object.Field {
	if f.Tag == object.TagString {
		f.Str = append([]byte(nil), f.Str...)
	}
	return f
}

func (r *Resolver) down() (Result, error) {
	if r.engine != nil {
		_ = r.engine.Save(r.store)
	}

	return Result{Shutdown: true}, nil
}

func (r *Resolver) observeLive() {
	r.mem.Observe(r.store.InitialCapacity() - r.store.CapRemaining())
}
