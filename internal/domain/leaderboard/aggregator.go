// Package leaderboard ranks predictions into per-match and per-group
// standings. Aggregation never fails on partial data: missing user profiles
// get placeholder names and predictions for unresolved matches are skipped.
package leaderboard

import (
	"sort"

	"github.com/JuanCGomezS/polla-club/internal/domain/group"
	"github.com/JuanCGomezS/polla-club/internal/domain/match"
	"github.com/JuanCGomezS/polla-club/internal/domain/prediction"
	"github.com/JuanCGomezS/polla-club/internal/domain/scoring"
	"github.com/JuanCGomezS/polla-club/internal/domain/user"
)

// BuildMatchLeaderboard ranks every prediction on one match. Cached points are
// trusted when present; otherwise points are computed on the fly. A match
// without a result has no leaderboard yet.
func BuildMatchLeaderboard(
	preds []prediction.Prediction,
	result *match.Result,
	rules group.Rules,
	names map[string]string,
) []MatchEntry {
	if result == nil {
		return nil
	}

	entries := make([]MatchEntry, 0, len(preds))
	for _, p := range preds {
		points := p.CachedPoints()
		if p.Points == nil {
			points, _ = scoring.CalculatePoints(p, result, rules)
		}
		entries = append(entries, MatchEntry{
			UserID:     p.UserID,
			UserName:   displayName(names, p.UserID),
			Prediction: p,
			Points:     points,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserName < entries[j].UserName
	})
	for i := range entries {
		entries[i].Rank = competitionRank(i, entries[i].Points, prevMatchRank(entries, i))
	}

	return entries
}

// BuildGroupLeaderboard ranks every group member by total points across
// finished matches. With zero finished matches all totals are zero and the
// ordering degenerates to names with sequential ranks, since there is nothing
// to tie on yet.
func BuildGroupLeaderboard(
	memberIDs []string,
	names map[string]string,
	preds []prediction.Prediction,
	finished map[string]match.Match,
	rules group.Rules,
) []GroupEntry {
	if len(finished) == 0 {
		entries := make([]GroupEntry, 0, len(memberIDs))
		for _, userID := range memberIDs {
			entries = append(entries, GroupEntry{
				UserID:   userID,
				UserName: displayName(names, userID),
			})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].UserName < entries[j].UserName
		})
		for i := range entries {
			entries[i].Rank = i + 1
		}
		return entries
	}

	byUser := make(map[string][]prediction.Prediction, len(memberIDs))
	for _, p := range preds {
		m, ok := finished[p.MatchID]
		if !ok {
			continue
		}
		if p.Points == nil && m.Result != nil {
			points, breakdown := scoring.CalculatePoints(p, m.Result, rules)
			p.Points = &points
			p.Breakdown = &breakdown
		}
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	entries := make([]GroupEntry, 0, len(memberIDs))
	for _, userID := range memberIDs {
		userPreds := byUser[userID]
		entries = append(entries, GroupEntry{
			UserID:           userID,
			UserName:         displayName(names, userID),
			TotalPoints:      scoring.TotalPoints(userPreds),
			PredictionsCount: len(userPreds),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].UserName < entries[j].UserName
	})
	for i := range entries {
		entries[i].Rank = competitionRank(i, entries[i].TotalPoints, prevGroupRank(entries, i))
	}

	return entries
}

// competitionRank gives tied scores the rank of the previous entry; a lower
// score resumes at the 1-based position.
func competitionRank(index, points int, prev *rankedScore) int {
	if prev != nil && points == prev.points {
		return prev.rank
	}
	return index + 1
}

type rankedScore struct {
	points int
	rank   int
}

func prevMatchRank(entries []MatchEntry, i int) *rankedScore {
	if i == 0 {
		return nil
	}
	return &rankedScore{points: entries[i-1].Points, rank: entries[i-1].Rank}
}

func prevGroupRank(entries []GroupEntry, i int) *rankedScore {
	if i == 0 {
		return nil
	}
	return &rankedScore{points: entries[i-1].TotalPoints, rank: entries[i-1].Rank}
}

func displayName(names map[string]string, userID string) string {
	if name, ok := names[userID]; ok && name != "" {
		return name
	}
	return user.PlaceholderName(userID)
}
