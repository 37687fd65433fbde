package object

import (
	"encoding/binary"
	"math"
)

// Layout (§4.1, all integers little-endian):
//
//	u8  key_len
//	key_len bytes  key
//	i64 access_times
//	i64 last_access
//	u8  field_tag  (0=integer, 1=decimal, 2=string)
//	if integer: i64 value
//	if decimal: 8 raw bytes (IEEE-754 binary64 bit pattern)
//	if string : u64 value_len; value_len bytes
const (
	maxKeyLen    = 255
	maxStringLen = math.MaxUint32
)

// Serialize encodes obj into the canonical binary layout.
func Serialize(obj *Object) ([]byte, error) {
	if len(obj.Key) > maxKeyLen {
		return nil, ErrTypeOverflow
	}

	if obj.Field.Tag == TagString && uint64(len(obj.Field.Str)) > maxStringLen {
		return nil, ErrTypeOverflow
	}

	buf := make([]byte, 0, 1+len(obj.Key)+16+1+9+len(valueOrEmpty(obj.Field)))

	buf = append(buf, byte(len(obj.Key)))
	buf = append(buf, obj.Key...)

	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], uint64(obj.Metadata.AccessTimes))
	buf = append(buf, scratch[:]...)
	binary.LittleEndian.PutUint64(scratch[:], uint64(obj.Metadata.LastAccess))
	buf = append(buf, scratch[:]...)

	buf = append(buf, byte(obj.Field.Tag))

	switch obj.Field.Tag {
	case TagInteger:
		binary.LittleEndian.PutUint64(scratch[:], uint64(obj.Field.Integer))
		buf = append(buf, scratch[:]...)
	case TagDecimal:
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(obj.Field.Decimal))
		buf = append(buf, scratch[:]...)
	case TagString:
		var lenBuf [8]byte
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(obj.Field.Str)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, obj.Field.Str...)
	default:
		return nil, ErrUnsupportedType
	}

	return buf, nil
}

func valueOrEmpty(f Field) []byte {
	if f.Tag == TagString {
		return f.Str
	}
	return nil
}

// Deserialize decodes buf into an Object. On success, the returned Object's
// Str field (if string-tagged) aliases a sub-slice of buf; callers that
// retain the Object beyond the lifetime of buf must copy it themselves.
func Deserialize(buf []byte) (Object, error) {
	var obj Object

	if len(buf) < 1 {
		return obj, ErrEndOfStream
	}

	keyLen := int(buf[0])
	buf = buf[1:]

	if len(buf) < keyLen {
		return obj, ErrEndOfStream
	}

	obj.Key = buf[:keyLen]
	buf = buf[keyLen:]

	if len(buf) < 16+1 {
		return obj, ErrEndOfStream
	}

	obj.Metadata.AccessTimes = int64(binary.LittleEndian.Uint64(buf[0:8]))
	obj.Metadata.LastAccess = int64(binary.LittleEndian.Uint64(buf[8:16]))
	tag := Tag(buf[16])
	buf = buf[17:]

	switch tag {
	case TagInteger:
		if len(buf) < 8 {
			return obj, ErrEndOfStream
		}
		obj.Field = NewInteger(int64(binary.LittleEndian.Uint64(buf[0:8])))
	case TagDecimal:
		if len(buf) < 8 {
			return obj, ErrEndOfStream
		}
		obj.Field = NewDecimal(math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8])))
	case TagString:
		if len(buf) < 8 {
			return obj, ErrEndOfStream
		}
		strLen := binary.LittleEndian.Uint64(buf[0:8])
		buf = buf[8:]
		if uint64(len(buf)) < strLen {
			return obj, ErrEndOfStream
		}
		obj.Field = NewString(buf[:strLen])
	default:
		return obj, ErrUnsupportedType
	}

	return obj, nil
}
