package collector

import "iter"

// MaxLocationBatchSize is the maximum number of locations the remote
// platform accepts in one order search request. Imposed by the platform,
// not configurable downstream.
const MaxLocationBatchSize = 10

// Batches partitions locations into chunks of at most size, preserving input
// order, the remainder in the last chunk. Empty input yields no chunks. The
// sequence is lazy; chunks alias the input slice and must not be mutated.
func Batches(locations []Location, size int) iter.Seq[[]Location] {
	if size <= 0 {
		size = MaxLocationBatchSize
	}

	return func(yield func([]Location) bool) {
		for start := 0; start < len(locations); start += size {
			end := start + size
			if end > len(locations) {
				end = len(locations)
			}
			if !yield(locations[start:end:end]) {
				return
			}
		}
	}
}

// locationIDs projects a location chunk onto its ids, in order.
func locationIDs(locations []Location) []string {
	ids := make([]string, len(locations))
	for i, loc := range locations {
		ids[i] = loc.ID
	}
	return ids
}
