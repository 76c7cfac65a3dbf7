package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoomType(t *testing.T) {
	t.Run("accepts every known type", func(t *testing.T) {
		for _, rt := range RoomTypes {
			parsed, err := ParseRoomType(string(rt))
			require.NoError(t, err)
			assert.Equal(t, rt, parsed)
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		for _, raw := range []string{"", "PENTHOUSE", "standard_single", "SUITE "} {
			_, err := ParseRoomType(raw)
			assert.ErrorIs(t, err, ErrInvalidRoomType, "input %q", raw)
		}
	})
}

func TestCanAccommodate(t *testing.T) {
	entry := &Entry{AllowedCount: 2}

	tests := []struct {
		name         string
		entry        *Entry
		materialized int
		requested    int
		want         bool
	}{
		{"empty ledger accepts up to cap", entry, 0, 2, true},
		{"exactly at cap", entry, 1, 1, true},
		{"over cap by one", entry, 2, 1, false},
		{"zero requested at cap", entry, 2, 0, true},
		{"nil entry", nil, 0, 1, false},
		{"negative requested", entry, 0, -1, false},
		{"negative materialized", entry, -1, 1, false},
		{"zero allowance rejects any request", &Entry{AllowedCount: 0}, 0, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccommodate(tt.entry, tt.materialized, tt.requested))
		})
	}
}
