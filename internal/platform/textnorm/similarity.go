package textnorm

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Similarity scores how alike two names are, in [0, 1]. Tokens are folded
// and sorted first so that "Martinez Lautaro" and "Lautaro Martínez" score
// as equal, mirroring a token-sort edit-distance ratio.
func Similarity(a, b string) float64 {
	sa := strings.Join(Tokens(a), " ")
	sb := strings.Join(Tokens(b), " ")
	if sa == "" || sb == "" {
		return 0
	}
	if sa == sb {
		return 1
	}

	dist := levenshtein.ComputeDistance(sa, sb)
	longest := len([]rune(sa))
	if l := len([]rune(sb)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}

	return 1 - float64(dist)/float64(longest)
}
