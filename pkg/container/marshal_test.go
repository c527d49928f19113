package container

import (
	"testing"

	"github.com/edtrt/edtrt/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshallUnmarshallDbRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		db   types.Db
	}{
		{
			name: "basic RO db",
			db:   types.Db{GUID: types.GUID("db-1"), Size: 4096, HomePD: types.PDLocation("pd-a"), Mode: types.AccessModeRO},
		},
		{
			name: "exclusive-write db with empty home",
			db:   types.Db{GUID: types.GUID("db-2"), Size: 0, HomePD: types.PDLocation(""), Mode: types.AccessModeEW},
		},
		{
			name: "large size value",
			db:   types.Db{GUID: types.GUID("db-3"), Size: 1 << 40, HomePD: types.PDLocation("pd-long-location-name"), Mode: types.AccessModeRW},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := len(tt.db.GUID) + 2 + 8 + len(tt.db.HomePD) + 2 + 4
			buf := make([]byte, size)

			n, err := marshallDb(buf, tt.db)
			require.NoError(t, err)
			assert.Equal(t, size, n)

			got, m, err := unmarshallDb(buf)
			require.NoError(t, err)
			assert.Equal(t, n, m)
			assert.Equal(t, tt.db.GUID, got.GUID)
			assert.Equal(t, tt.db.Size, got.Size)
			assert.Equal(t, tt.db.HomePD, got.HomePD)
			assert.Equal(t, tt.db.Mode, got.Mode)
		})
	}
}

func TestMarshallDbBufferTooSmall(t *testing.T) {
	db := types.Db{GUID: types.GUID("db-1"), Size: 4096, HomePD: types.PDLocation("pd-a"), Mode: types.AccessModeRO}
	buf := make([]byte, 3)
	_, err := marshallDb(buf, db)
	assert.ErrorIs(t, err, errBufferTooSmall)
}

func TestUnmarshallDbTruncatedBuffer(t *testing.T) {
	db := types.Db{GUID: types.GUID("db-1"), Size: 4096, HomePD: types.PDLocation("pd-a"), Mode: types.AccessModeRO}
	size := len(db.GUID) + 2 + 8 + len(db.HomePD) + 2 + 4
	buf := make([]byte, size)
	_, err := marshallDb(buf, db)
	require.NoError(t, err)

	for cut := 0; cut < size; cut++ {
		_, _, err := unmarshallDb(buf[:cut])
		assert.Error(t, err, "truncated at %d bytes should fail to decode", cut)
	}
}

func TestDbSpaceMarshallUnmarshallRoundTrip(t *testing.T) {
	db := types.Db{GUID: types.GUID("db-move-me"), Size: 2048, HomePD: types.PDLocation("pd-src"), Mode: types.AccessModeRW}
	ds := NewDbSpace(db)

	size, err := ds.MarshallSize()
	require.NoError(t, err)
	buf := make([]byte, size)

	n, err := ds.Marshall(buf)
	require.NoError(t, err)
	assert.LessOrEqual(t, n, size)

	got, _, err := UnmarshallDb(buf)
	require.NoError(t, err)
	assert.Equal(t, db.GUID, got.GUID)
	assert.Equal(t, db.Size, got.Size)
	assert.Equal(t, db.HomePD, got.HomePD)
	assert.Equal(t, db.Mode, got.Mode)
}

func TestGetGUIDEmptyBuffer(t *testing.T) {
	_, _, err := getGUID(nil)
	assert.Error(t, err)
}
