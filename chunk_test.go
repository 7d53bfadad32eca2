package socketpdu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/opd-ai/socketpdu/limits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachChunk(t *testing.T) {
	tests := []struct {
		name   string
		length int
		mtu    int
	}{
		{"empty", 0, 10},
		{"single byte", 1, 10},
		{"exactly one unit", 10, 10},
		{"one over", 11, 10},
		{"several units", 95, 10},
		{"default mtu", 25000, limits.DefaultTransferUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := make([]byte, tt.length)
			for i := range payload {
				payload[i] = byte(i)
			}

			var joined []byte
			calls := 0
			n, err := forEachChunk(payload, tt.mtu, func(chunk []byte) error {
				assert.LessOrEqual(t, len(chunk), tt.mtu)
				assert.NotEmpty(t, chunk)
				joined = append(joined, chunk...)
				calls++
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, limits.ChunkCount(tt.length, tt.mtu), n)
			assert.Equal(t, n, calls)
			assert.True(t, bytes.Equal(payload, joined))
		})
	}
}

func TestForEachChunkStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	n, err := forEachChunk(make([]byte, 30), 10, func([]byte) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, calls)
}
