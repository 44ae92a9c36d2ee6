package combo

// Beats decides whether candidate can be played on top of tableTop
// A nil tableTop means the table is empty. When the play is legal the returned guess holds only
// the interpretation that was chosen: the strongest one that beats the table.
func Beats(tableTop, candidate *Guess) (legal bool, resolved *Guess) {
	if !candidate.IsValid() {
		return false, nil
	}

	var top *Interpretation
	if tableTop != nil {
		top = tableTop.Best()
	}

	for _, interp := range candidate.Interpretations {
		if interp.Beats(top) {
			return true, Resolved(interp)
		}
	}

	return false, nil
}
