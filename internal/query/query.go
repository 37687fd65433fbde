package query

import "bytes"

// Query is one parsed client request: which connection it came from, the
// uppercased command word, and the remainder of the line verbatim. Args is
// deliberately not tokenized here: several commands take values or keys
// that may themselves contain spaces (a string value, or a key), so further
// splitting is each command's own responsibility.
type Query struct {
	ClientRef uint64
	Command   string
	Args      []byte
}

// Parse splits raw at its first space byte into an upper-cased command word
// and the verbatim remainder. A raw that is empty or entirely whitespace is
// ErrEmptyQuery.
func Parse(clientRef uint64, raw []byte) (Query, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Query{}, ErrEmptyQuery
	}

	idx := bytes.IndexByte(raw, ' ')
	if idx == -1 {
		return Query{ClientRef: clientRef, Command: string(bytes.ToUpper(raw))}, nil
	}

	return Query{
		ClientRef: clientRef,
		Command:   string(bytes.ToUpper(raw[:idx])),
		Args:      raw[idx+1:],
	}, nil
}

// SplitFirst splits args at its first space into a leading token and the
// verbatim remainder. It is used by two-token commands (e.g. "key value")
// where the value, but not the key, may itself contain spaces.
func SplitFirst(args []byte) (first, rest []byte, ok bool) {
	idx := bytes.IndexByte(args, ' ')
	if idx == -1 {
		return args, nil, false
	}
	return args[:idx], args[idx+1:], true
}
