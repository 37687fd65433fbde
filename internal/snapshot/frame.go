package snapshot

import "github.com/pierrec/lz4/v4"

// worstCaseExpansion bounds how much larger a decompressed LZ4 block can be
// than its compressed form. It is the conservative admission-gate multiplier
// of spec.md §4.3: a frame is rejected outright, before attempting
// decompression, if compressed_len * worstCaseExpansion would not fit in the
// store's remaining capacity.
const worstCaseExpansion = 255

// Frame payload flags. CompressBlock reports n == 0 for input it cannot
// shrink (small or already-dense byte strings, common for short keys and
// values); that case is stored raw rather than discarded.
const (
	flagLZ4 byte = 0
	flagRaw byte = 1
)

// encodeFrame compresses plaintext and prefixes the result with a one-byte
// flag marking whether the payload is LZ4 block data or stored raw.
func encodeFrame(plaintext []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(plaintext)))

	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(plaintext, dst)
	if err != nil {
		return nil, err
	}

	if n == 0 {
		out := make([]byte, 1+len(plaintext))
		out[0] = flagRaw
		copy(out[1:], plaintext)
		return out, nil
	}

	out := make([]byte, 1+n)
	out[0] = flagLZ4
	copy(out[1:], dst[:n])
	return out, nil
}

// decodeFrame reverses encodeFrame. maxUncompressed bounds the destination
// buffer used for LZ4 decompression and must already have passed the
// capacity admission gate.
func decodeFrame(payload []byte, maxUncompressed int) ([]byte, error) {
	if len(payload) == 0 {
		return nil, ErrCorrupt
	}

	flag, body := payload[0], payload[1:]

	switch flag {
	case flagRaw:
		return body, nil
	case flagLZ4:
		dst := make([]byte, maxUncompressed)
		n, err := lz4.UncompressBlock(body, dst)
		if err != nil {
			return nil, ErrCorrupt
		}
		return dst[:n], nil
	default:
		return nil, ErrCorrupt
	}
}
