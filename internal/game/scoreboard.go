package game

import (
	"sort"

	"trainvoc-room-service/internal/domain"
)

const topHighlighted = 3

// Rank orders players by cumulative score, ties broken by join order.
func Rank(players []*domain.Player) []domain.RankingEntry {
	sorted := make([]*domain.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].JoinSeq < sorted[j].JoinSeq
	})

	entries := make([]domain.RankingEntry, len(sorted))
	for i, p := range sorted {
		entries[i] = domain.RankingEntry{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
			Rank:     i + 1,
			IsTop3:   i < topHighlighted,
		}
	}
	return entries
}
