package invert

import (
	"encoding/binary"

	"github.com/orneryd/nornicdb/internal/qnode"
)

// encodePosting serializes one posting's TF and ascending location list as
// a TF varint, a location-count varint, then delta-encoded location
// varints, minimizing the
// per-posting footprint for high-frequency tokens.
func encodePosting(tf uint32, locations []qnode.Location) []byte {
	buf := make([]byte, 0, 5+5*len(locations))
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(tf))
	buf = append(buf, tmp[:n]...)

	n = binary.PutUvarint(tmp[:], uint64(len(locations)))
	buf = append(buf, tmp[:n]...)

	var prev qnode.Location
	for _, l := range locations {
		delta := uint64(l - prev)
		n := binary.PutUvarint(tmp[:], delta)
		buf = append(buf, tmp[:n]...)
		prev = l
	}
	return buf
}

// decodePosting is the inverse of encodePosting.
func decodePosting(raw []byte) (tf uint32, locations []qnode.Location, err error) {
	tf64, n := binary.Uvarint(raw)
	if n <= 0 {
		return 0, nil, errShortBuffer
	}
	raw = raw[n:]

	count, n := binary.Uvarint(raw)
	if n <= 0 {
		return 0, nil, errShortBuffer
	}
	raw = raw[n:]

	locations = make([]qnode.Location, 0, count)
	var prev qnode.Location
	for i := uint64(0); i < count; i++ {
		delta, n := binary.Uvarint(raw)
		if n <= 0 {
			return 0, nil, errShortBuffer
		}
		raw = raw[n:]
		prev += qnode.Location(delta)
		locations = append(locations, prev)
	}
	return uint32(tf64), locations, nil
}
