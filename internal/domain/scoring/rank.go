package scoring

import "sort"

// Entry is one aggregated leaderboard row prior to ranking.
type Entry struct {
	ID       string
	Username string
	Total    int
	Correct  int
	Attempts int
	Accuracy int
	Rank     int
}

// Rank orders entries by total points descending, correct picks
// descending, then id ascending so repeated calls over the same input are
// byte-identical. Ranks follow competition ("1224") numbering: a row tied
// with its predecessor on (total, correct) shares its rank, otherwise the
// rank is the row's 1-based position.
func Rank(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		if out[i].Correct != out[j].Correct {
			return out[i].Correct > out[j].Correct
		}
		return out[i].ID < out[j].ID
	})

	for idx := range out {
		if idx > 0 && out[idx].Total == out[idx-1].Total && out[idx].Correct == out[idx-1].Correct {
			out[idx].Rank = out[idx-1].Rank
			continue
		}
		out[idx].Rank = idx + 1
	}

	return out
}
