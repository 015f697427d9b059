package assignee

import (
	"strings"

	"tasksync/internal/core/normalize"
)

// Similarity is 1 - levenshtein(a, b) / max(len(a), len(b)) over runes, in [0,1]
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// Match tiers
const (
	ConfExact     = 0.9
	ConfSubstring = 0.8
	ConfFirstName = 0.7
	ConfEditMax   = 0.75
	ConfEditMin   = 0.6

	// MinSimilarity is the edit distance floor below which a pair is not a match
	MinSimilarity = 0.7
)

// Resolve finds the participant that name refers to. Both sides go through the
// canonicalizer. Tiers in order: exact key, substring (either way, 3+ runes),
// unique first name, edit distance (a bare first name is also compared to
// first names).
// Ties keep the earlier participant
func Resolve(name string, participants []string, canon *Canonicalizer) (string, float64, bool) {
	nk := canon.Key(name)
	if nk == "" || len(participants) == 0 {
		return "", 0, false
	}

	keys := make([]string, len(participants))
	firsts := map[string]int{}
	for i, p := range participants {
		keys[i] = canon.Key(p)
		firsts[normalize.FirstName(keys[i])]++
	}

	single := !strings.Contains(nk, " ")
	best, bestConf := -1, 0.0
	consider := func(i int, conf float64) {
		if conf > bestConf {
			best, bestConf = i, conf
		}
	}

	for i, pk := range keys {
		if pk == "" {
			continue
		}
		switch {
		case pk == nk:
			consider(i, ConfExact)
		case len([]rune(nk)) >= 3 && (strings.Contains(pk, nk) || strings.Contains(nk, pk)):
			consider(i, ConfSubstring)
		case single && normalize.FirstName(pk) == nk && firsts[nk] == 1:
			consider(i, ConfFirstName)
		default:
			sim := Similarity(nk, pk)
			if single {
				sim = max(sim, Similarity(nk, normalize.FirstName(pk)))
			}
			if sim >= MinSimilarity {
				consider(i, editConfidence(sim))
			}
		}
	}
	if best < 0 {
		return "", 0, false
	}
	return canon.Canonical(participants[best]), bestConf, true
}

// editConfidence scales similarity 0.7..1 onto 0.6..0.75
func editConfidence(sim float64) float64 {
	if sim >= 1 {
		return ConfEditMax
	}
	return ConfEditMin + (sim-MinSimilarity)/(1-MinSimilarity)*(ConfEditMax-ConfEditMin)
}
