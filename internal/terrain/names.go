package terrain

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// idSpace namespaces the name-based UUIDs of generated features so the same
// seed always produces the same ids.
var idSpace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("planet-core/terrain"))

func featureID(kind string, seed int64, n int) string {
	return uuid.NewSHA1(idSpace, []byte(fmt.Sprintf("%s/%d/%d", kind, seed, n))).String()
}

// generateNames produces procedural names by combining syllables.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Ar", "Bel", "Cor", "Dra", "El", "Fen", "Gal", "Hal", "Ith", "Kor",
		"Lun", "Mar", "Nor", "Or", "Pel", "Quen", "Ros", "Sel", "Tor", "Ul",
		"Val", "Wen", "Xan", "Yr", "Zel",
	}
	suffixes := []string{
		"adon", "aris", "ava", "eth", "ia", "ion", "is", "ora", "os", "una",
		"ane", "eus", "ir", "olt", "undra", "yx", "anth", "orin", "essa", "ax",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)

	for len(names) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if used[name] {
			// Syllable space is finite; number the overflow.
			name = fmt.Sprintf("%s %d", name, len(names)+1)
		}
		if !used[name] {
			used[name] = true
			names = append(names, name)
		}
	}

	return names
}
