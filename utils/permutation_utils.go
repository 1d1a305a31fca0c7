package utils

// PermutationsWithRepetition returns every ordered sequence of length n drawn from choices, where elements may
// repeat. The number of results is len(choices)^n.
func PermutationsWithRepetition[T any](choices []T, n int) [][]T {
	if n <= 0 {
		return [][]T{{}}
	}

	permutations := make([][]T, 0)
	for _, choice := range choices {
		for _, suffix := range PermutationsWithRepetition(choices, n-1) {
			permutation := make([]T, 0, n)
			permutation = append(permutation, choice)
			permutation = append(permutation, suffix...)
			permutations = append(permutations, permutation)
		}
	}
	return permutations
}
