package cmd

import "strings"

// suggestThreshold is the largest edit distance still offered as a suggestion.
const suggestThreshold = 3

// editDistance is the Levenshtein distance between a and b, computed over
// a single reused row.
func editDistance(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			next := min(row[j]+1, row[j-1]+1, diag+cost)
			diag = row[j]
			row[j] = next
		}
	}
	return row[len(b)]
}

// closest returns the candidate nearest to input after normalize is applied
// to both, or "" when nothing is within suggestThreshold.
func closest(input string, candidates []string, normalize func(string) string) string {
	input = normalize(input)
	if input == "" {
		return ""
	}
	best, bestDist := "", suggestThreshold+1
	for _, c := range candidates {
		if d := editDistance(input, normalize(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// suggestCommand finds the closest command name to the unknown input.
func suggestCommand(unknown string, commands []string) string {
	return closest(unknown, commands, strings.ToLower)
}

// suggestFlag compares flag names without their dashes but returns the
// match as registered ("--status").
func suggestFlag(unknown string, flagNames []string) string {
	return closest(unknown, flagNames, func(s string) string {
		return strings.ToLower(strings.TrimLeft(s, "-"))
	})
}
