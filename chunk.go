package socketpdu

import "github.com/opd-ai/socketpdu/limits"

// forEachChunk calls send with consecutive slices of payload of at most mtu
// bytes, stopping at the first error. It returns the number of chunks sent.
// An empty payload sends nothing. The slices alias payload and must not be
// retained by send.
func forEachChunk(payload []byte, mtu int, send func(chunk []byte) error) (int, error) {
	count := limits.ChunkCount(len(payload), mtu)
	for i := 0; i < count; i++ {
		start := i * mtu
		end := min(start+mtu, len(payload))
		if err := send(payload[start:end]); err != nil {
			return i, err
		}
	}
	return count, nil
}
