package players

// ElectHost returns the index of the candidate that joined first, or -1 when
// there are no candidates. Equal join times resolve to the lower index.
func ElectHost(candidates []Player) int {
	best := -1
	for i, p := range candidates {
		if best == -1 || p.JoinedAt.Before(candidates[best].JoinedAt) {
			best = i
		}
	}
	return best
}
