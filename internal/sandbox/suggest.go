package sandbox

import "github.com/sahilm/fuzzy"

// suggestScript returns the declared script closest to script, or "" when
// nothing is close. A declared name matching script as a subsequence wins;
// otherwise a declared name found inside script as a subsequence is tried.
func suggestScript(script string, scripts []string) string {
	if matches := fuzzy.Find(script, scripts); len(matches) > 0 {
		return matches[0].Str
	}

	best, bestScore := "", 0
	for _, candidate := range scripts {
		matches := fuzzy.Find(candidate, []string{script})
		if len(matches) > 0 && (best == "" || matches[0].Score > bestScore) {
			best, bestScore = candidate, matches[0].Score
		}
	}
	return best
}
