// Package scoring turns one prediction and one official result into points
// under a group's rule configuration.
package scoring

import (
	"github.com/JuanCGomezS/polla-club/internal/domain/group"
	"github.com/JuanCGomezS/polla-club/internal/domain/match"
	"github.com/JuanCGomezS/polla-club/internal/domain/prediction"
)

// CalculatePoints is pure and deterministic: identical inputs always yield
// identical output and no argument is mutated. A nil result scores zero.
//
// An exact score stacks every applicable category: it implies the correct
// winner and the correct goal difference, so those bonuses are awarded on top
// when configured. On the non-exact path the winner bonus requires a decided
// match (a correctly predicted draw earns nothing unless exact) and the
// goal-difference bonus requires matching signed differences with a nonzero
// actual difference. The resultDiff != 0 guard keeps actual draws out of the
// difference bonus on this path; that asymmetry is deliberate product
// behavior, not an oversight.
func CalculatePoints(pred prediction.Prediction, result *match.Result, rules group.Rules) (int, prediction.Breakdown) {
	var breakdown prediction.Breakdown
	if result == nil {
		return 0, breakdown
	}

	points := 0
	predDiff := pred.Team1Score - pred.Team2Score
	resultDiff := result.Team1Score - result.Team2Score
	predWinner := winnerCode(predDiff)
	resultWinner := winnerCode(resultDiff)

	if pred.Team1Score == result.Team1Score && pred.Team2Score == result.Team2Score {
		points += rules.PointsExactScore
		breakdown.ExactScore = rules.PointsExactScore

		if rules.PointsWinner > 0 && resultWinner != winnerDraw {
			points += rules.PointsWinner
			breakdown.Winner = rules.PointsWinner
		}
		if rules.PointsGoalDifference > 0 && resultDiff != 0 {
			points += rules.PointsGoalDifference
			breakdown.GoalDifference = rules.PointsGoalDifference
		}
	} else {
		if predWinner == resultWinner && resultWinner != winnerDraw {
			points += rules.PointsWinner
			breakdown.Winner = rules.PointsWinner
		}
		if rules.PointsGoalDifference > 0 && predDiff == resultDiff && resultDiff != 0 {
			points += rules.PointsGoalDifference
			breakdown.GoalDifference = rules.PointsGoalDifference
		}
	}

	return points, breakdown
}

const (
	winnerDraw  = 0
	winnerTeam1 = 1
	winnerTeam2 = 2
)

func winnerCode(diff int) int {
	switch {
	case diff > 0:
		return winnerTeam1
	case diff < 0:
		return winnerTeam2
	default:
		return winnerDraw
	}
}

// TotalPoints sums the cached points of a user's predictions. Predictions
// without a cached value count zero; callers fill the cache first when they
// need fresh numbers.
func TotalPoints(preds []prediction.Prediction) int {
	total := 0
	for _, p := range preds {
		total += p.CachedPoints()
	}
	return total
}
