package container

import (
	"encoding/binary"

	"github.com/edtrt/edtrt/pkg/types"
)

// Wire layout for a marshalled Edt/Db record, under one convention
// on the marshalling pointer-relocation protocol: every relocatable field is
// carried as (offset<<1)|isAddl, where offset is its byte offset within the
// flattened record and the low bit distinguishes a "base" reference (0, the
// field's natural position) from an "additional" one (1, a field appended
// past the base record, e.g. a variable-length ParamV/DepV tail). The
// receiving PD un-relocates by re-deriving both offsets against its own copy
// of the record layout — this module never sends raw pointers across PDs.

func relocate(offset int, isAddl bool) uint64 {
	v := uint64(offset) << 1
	if isAddl {
		v |= 1
	}
	return v
}

func unrelocate(v uint64) (offset int, isAddl bool) {
	return int(v >> 1), v&1 != 0
}

// marshallEdtSize returns the exact byte length marshallEdt will write.
func marshallEdtSize(e types.Edt) int {
	// GUID + TemplateGUID + SlotCount + DepCount + state + flags +
	// ScheduledSpace + ScheduledTime, then the relocatable ParamV/DepV tails.
	base := len(e.GUID) + 2 + len(e.TemplateGUID) + 2 + 4 + 4 + 4 + 4 + len(e.ScheduledSpace) + 2 + 8
	tail := 8*len(e.ParamV) + (len(e.DepV) * (guidFieldSize + 4 + 8))
	for _, d := range e.DepV {
		tail += len(d.DB)
	}
	return base + tail + 8 // the ParamV relocation offset; each dep carries its own in the tail
}

const guidFieldSize = 2 // length-prefix width for a GUID field

func marshallEdt(buf []byte, e types.Edt) (int, error) {
	if len(buf) < marshallEdtSize(e) {
		return 0, errBufferTooSmall
	}
	n := 0
	n += putGUID(buf[n:], e.GUID)
	n += putGUID(buf[n:], e.TemplateGUID)
	binary.BigEndian.PutUint32(buf[n:], uint32(e.SlotCount))
	n += 4
	binary.BigEndian.PutUint32(buf[n:], uint32(e.DepCount))
	n += 4
	binary.BigEndian.PutUint32(buf[n:], uint32(e.State))
	n += 4
	binary.BigEndian.PutUint32(buf[n:], uint32(e.Flags))
	n += 4
	n += putGUID(buf[n:], types.GUID(e.ScheduledSpace))
	binary.BigEndian.PutUint64(buf[n:], e.ScheduledTime)
	n += 8

	paramOffset := n + 8
	binary.BigEndian.PutUint64(buf[n:], relocate(paramOffset, true))
	n += 8
	for _, p := range e.ParamV {
		binary.BigEndian.PutUint64(buf[n:], p)
		n += 8
	}

	depOffset := n
	for _, d := range e.DepV {
		n += putGUID(buf[n:], d.DB)
		binary.BigEndian.PutUint32(buf[n:], uint32(d.Mode))
		n += 4
		binary.BigEndian.PutUint64(buf[n:], relocate(depOffset, true))
		n += 8
	}
	return n, nil
}

// marshallDb writes db's metadata (never its payload, an explicit non-goal
// of the whole module) as a flat record: length-prefixed GUID, 8-byte size,
// length-prefixed HomePD, 4-byte mode. Unlike marshallEdt it carries no
// relocation offsets.
func marshallDb(buf []byte, db types.Db) (int, error) {
	need := len(db.GUID) + 2 + 8 + len(db.HomePD) + 2 + 4
	if len(buf) < need {
		return 0, errBufferTooSmall
	}
	n := 0
	n += putGUID(buf[n:], db.GUID)
	binary.BigEndian.PutUint64(buf[n:], db.Size)
	n += 8
	n += putGUID(buf[n:], types.GUID(db.HomePD))
	binary.BigEndian.PutUint32(buf[n:], uint32(db.Mode))
	n += 4
	return n, nil
}

// unmarshallDb reads back a record written by marshallDb — the receiving
// side of the db-move-src/db-move-dst transact path. Only GUID, Size, HomePD
// and Mode are carried; Ptr, Hints and Created come back as zero values.
func unmarshallDb(buf []byte) (types.Db, int, error) {
	guid, n, err := getGUID(buf)
	if err != nil {
		return types.Db{}, 0, err
	}
	if len(buf) < n+8 {
		return types.Db{}, 0, errBufferTooSmall
	}
	size := binary.BigEndian.Uint64(buf[n:])
	n += 8
	home, m, err := getGUID(buf[n:])
	if err != nil {
		return types.Db{}, 0, err
	}
	n += m
	if len(buf) < n+4 {
		return types.Db{}, 0, errBufferTooSmall
	}
	mode := types.AccessMode(binary.BigEndian.Uint32(buf[n:]))
	n += 4
	return types.Db{GUID: guid, Size: size, HomePD: types.PDLocation(home), Mode: mode}, n, nil
}

func putGUID(buf []byte, g types.GUID) int {
	binary.BigEndian.PutUint16(buf, uint16(len(g)))
	copy(buf[2:], []byte(g))
	return 2 + len(g)
}

func getGUID(buf []byte) (types.GUID, int, error) {
	if len(buf) < 2 {
		return "", 0, errBufferTooSmall
	}
	l := int(binary.BigEndian.Uint16(buf))
	if len(buf) < 2+l {
		return "", 0, errBufferTooSmall
	}
	return types.GUID(buf[2 : 2+l]), 2 + l, nil
}

var errBufferTooSmall = schedErr("container: marshall buffer too small")

type schedErr string

func (e schedErr) Error() string { return string(e) }
