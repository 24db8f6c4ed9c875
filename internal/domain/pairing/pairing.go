// Package pairing builds the ordered work list of song/listener pairs and
// derives the per-song deterministic seed.
package pairing

import (
	"crypto/md5" //nolint:gosec // content hashing for seed derivation, not security
	"math/big"

	"github.com/auralab/stemscore/internal/domain/types"
)

// smallTestStride keeps every Nth pair when reduced mode is on.
const smallTestStride = 15

// seedModulus bounds derived seeds to [0, 1e8).
const seedModulus = 100_000_000

// Pairs returns the song-major Cartesian product of songs and listeners,
// preserving both input orders. With smallTest set, only every 15th pair
// (by position in the full enumeration) is kept.
func Pairs(songs []string, listeners []string, smallTest bool) []types.Pair {
	pairs := make([]types.Pair, 0, len(songs)*len(listeners))
	for _, song := range songs {
		for _, listener := range listeners {
			pairs = append(pairs, types.Pair{Song: song, Listener: listener})
		}
	}

	if smallTest {
		reduced := make([]types.Pair, 0, (len(pairs)+smallTestStride-1)/smallTestStride)
		for i := 0; i < len(pairs); i += smallTestStride {
			reduced = append(reduced, pairs[i])
		}
		pairs = reduced
	}

	return pairs
}

// SongSeed derives a deterministic seed from a song identifier: the MD5
// digest of its UTF-8 encoding taken as a big integer, modulo 1e8. Stable
// across runs and processes, and independent of iteration order.
func SongSeed(song string) int64 {
	digest := md5.Sum([]byte(song)) //nolint:gosec // content hashing for seed derivation, not security
	n := new(big.Int).SetBytes(digest[:])
	return n.Mod(n, big.NewInt(seedModulus)).Int64()
}
