package scoring

import (
	"reflect"
	"testing"

	"github.com/JuanCGomezS/polla-club/internal/domain/group"
	"github.com/JuanCGomezS/polla-club/internal/domain/match"
	"github.com/JuanCGomezS/polla-club/internal/domain/prediction"
)

func TestCalculatePoints(t *testing.T) {
	t.Parallel()

	rules := group.Rules{PointsExactScore: 5, PointsWinner: 2, PointsGoalDifference: 1}

	tests := []struct {
		name      string
		pred      [2]int
		result    *match.Result
		rules     group.Rules
		points    int
		breakdown prediction.Breakdown
	}{
		{
			name:      "exact score stacks winner and difference",
			pred:      [2]int{2, 1},
			result:    &match.Result{Team1Score: 2, Team2Score: 1},
			rules:     rules,
			points:    8,
			breakdown: prediction.Breakdown{ExactScore: 5, Winner: 2, GoalDifference: 1},
		},
		{
			name:      "exact draw earns only exact score",
			pred:      [2]int{1, 1},
			result:    &match.Result{Team1Score: 1, Team2Score: 1},
			rules:     rules,
			points:    5,
			breakdown: prediction.Breakdown{ExactScore: 5},
		},
		{
			name:      "winner plus matching difference",
			pred:      [2]int{3, 1},
			result:    &match.Result{Team1Score: 2, Team2Score: 0},
			rules:     rules,
			points:    3,
			breakdown: prediction.Breakdown{Winner: 2, GoalDifference: 1},
		},
		{
			name:      "winner only",
			pred:      [2]int{1, 0},
			result:    &match.Result{Team1Score: 3, Team2Score: 0},
			rules:     rules,
			points:    2,
			breakdown: prediction.Breakdown{Winner: 2},
		},
		{
			name:   "non-exact draw earns nothing",
			pred:   [2]int{1, 1},
			result: &match.Result{Team1Score: 2, Team2Score: 2},
			rules:  rules,
			points: 0,
		},
		{
			name:   "wrong winner earns nothing",
			pred:   [2]int{0, 2},
			result: &match.Result{Team1Score: 1, Team2Score: 0},
			rules:  rules,
			points: 0,
		},
		{
			name:      "difference bonus disabled",
			pred:      [2]int{3, 1},
			result:    &match.Result{Team1Score: 2, Team2Score: 0},
			rules:     group.Rules{PointsExactScore: 5, PointsWinner: 2},
			points:    2,
			breakdown: prediction.Breakdown{Winner: 2},
		},
		{
			name:   "no result scores zero",
			pred:   [2]int{2, 1},
			result: nil,
			rules:  rules,
			points: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := prediction.Prediction{Team1Score: tt.pred[0], Team2Score: tt.pred[1]}

			points, breakdown := CalculatePoints(pred, tt.result, tt.rules)
			if points != tt.points {
				t.Fatalf("points: got=%d want=%d", points, tt.points)
			}
			if breakdown != tt.breakdown {
				t.Fatalf("breakdown: got=%+v want=%+v", breakdown, tt.breakdown)
			}
		})
	}
}

func TestCalculatePoints_Idempotent(t *testing.T) {
	t.Parallel()

	rules := group.Rules{PointsExactScore: 5, PointsWinner: 2, PointsGoalDifference: 1}
	pred := prediction.Prediction{ID: "p1", UserID: "u1", MatchID: "m1", Team1Score: 2, Team2Score: 1}
	result := &match.Result{Team1Score: 2, Team2Score: 1}
	original := pred

	p1, b1 := CalculatePoints(pred, result, rules)
	p2, b2 := CalculatePoints(pred, result, rules)

	if p1 != p2 || b1 != b2 {
		t.Fatalf("outputs differ across identical calls: (%d,%+v) vs (%d,%+v)", p1, b1, p2, b2)
	}
	if !reflect.DeepEqual(pred, original) {
		t.Fatalf("prediction argument was mutated: %+v", pred)
	}
}

func TestTotalPoints(t *testing.T) {
	t.Parallel()

	three := 3
	eight := 8
	preds := []prediction.Prediction{
		{ID: "p1", Points: &three},
		{ID: "p2", Points: &eight},
		{ID: "p3"}, // no cached points yet
	}

	if got := TotalPoints(preds); got != 11 {
		t.Fatalf("total: got=%d want=11", got)
	}
	if got := TotalPoints(nil); got != 0 {
		t.Fatalf("empty total: got=%d want=0", got)
	}
}
