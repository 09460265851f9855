//go:build !race

package usecases

// Cost 10 matches the hashes already stored for existing accounts, so
// new and old hashes stay comparable in login latency.
func passwordHashCost() int {
	return 10
}
