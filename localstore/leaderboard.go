package localstore

import "sort"

// LeaderboardEntry is one row of the locally aggregated ranking.
type LeaderboardEntry struct {
	Name          string `json:"name"`
	TreesPlanted  int    `json:"treesPlanted"`
	SpeciesCount  int    `json:"speciesCount"`
	VerifiedCount int    `json:"verifiedCount"`
}

// AggregateLeaderboard groups local records by planter name and ranks them
// by tree count, descending. Unlike the remote query, only planters present
// in the records appear. The sort is stable: ties keep the order in which a
// planter was first encountered. Records without a planter name are counted
// under "Anonymous Planter".
func AggregateLeaderboard(records []TreeRecord) []LeaderboardEntry {
	type stats struct {
		count    int
		verified int
		species  map[string]struct{}
	}

	byName := map[string]*stats{}
	order := []string{}

	for _, record := range records {
		name := record.PlanterName
		if name == "" {
			name = "Anonymous Planter"
		}

		st, ok := byName[name]
		if !ok {
			st = &stats{species: map[string]struct{}{}}
			byName[name] = st
			order = append(order, name)
		}

		st.count++
		if record.Verified {
			st.verified++
		}
		if record.TreeName != "" {
			st.species[record.TreeName] = struct{}{}
		}
	}

	entries := make([]LeaderboardEntry, 0, len(order))
	for _, name := range order {
		st := byName[name]
		entries = append(entries, LeaderboardEntry{
			Name:          name,
			TreesPlanted:  st.count,
			SpeciesCount:  len(st.species),
			VerifiedCount: st.verified,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TreesPlanted > entries[j].TreesPlanted
	})
	return entries
}
