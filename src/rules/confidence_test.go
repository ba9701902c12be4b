package rules

import (
	"testing"

	"hearthshare-server/src/models"

	"github.com/shopspring/decimal"
)

func TestCalculateConfidenceScore(t *testing.T) {
	txn := groceryTxn()

	tests := []struct {
		name string
		rule models.SplittingRule
		want int
	}{
		{
			name: "anchored literal merchant equality scores 100",
			rule: merchantRule(1, "^Tesco$", 1),
			want: 100,
		},
		{
			name: "anchored non-literal merchant pattern scores 95",
			rule: merchantRule(1, "^Tes.o$", 1),
			want: 95,
		},
		{
			name: "unanchored merchant pattern scores 90",
			rule: merchantRule(1, "Tesco", 1),
			want: 90,
		},
		{
			name: "anchored literal not equal to merchant scores 95",
			rule: merchantRule(1, "^Sainsburys$", 1),
			want: 95,
		},
		{
			name: "category match scores 80",
			rule: categoryRule(1, "groceries", 1),
			want: 80,
		},
		{
			name: "amount threshold with both bounds scores 60",
			rule: amountRule(1, "10", "100", 1),
			want: 60,
		},
		{
			name: "amount threshold with one bound scores 50",
			rule: amountRule(1, "10", "", 1),
			want: 50,
		},
		{
			name: "default rule scores 25",
			rule: defaultRule(1, 1),
			want: 25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateConfidenceScore(txn, tt.rule)
			if got != tt.want {
				t.Errorf("CalculateConfidenceScore() = %d, want %d", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("CalculateConfidenceScore() = %d, outside [0,100]", got)
			}
		})
	}
}

// Specificity must be monotonic: merchant >= category >= amount >= default.
func TestConfidenceScoreMonotonicity(t *testing.T) {
	txn := groceryTxn()

	merchant := CalculateConfidenceScore(txn, merchantRule(1, "Tesco", 1))
	category := CalculateConfidenceScore(txn, categoryRule(2, "groceries", 1))
	amount := CalculateConfidenceScore(txn, amountRule(3, "10", "100", 1))
	def := CalculateConfidenceScore(txn, defaultRule(4, 1))

	if merchant < category || category < amount || amount < def {
		t.Errorf("scores not monotonic: merchant=%d category=%d amount=%d default=%d",
			merchant, category, amount, def)
	}
}

func TestConfidenceScoreBands(t *testing.T) {
	txn := models.Transaction{
		MerchantName: strPtr("Tesco"),
		Amount:       decimal.RequireFromString("-45.20"),
		Category:     "groceries",
	}

	merchantScore := CalculateConfidenceScore(txn, merchantRule(1, "^Tesco$", 1))
	if ConfidenceLevelFor(&merchantScore) != ConfidenceHigh {
		t.Errorf("merchant match should land in the high band, got score %d", merchantScore)
	}

	categoryScore := CalculateConfidenceScore(txn, categoryRule(1, "groceries", 1))
	if ConfidenceLevelFor(&categoryScore) != ConfidenceHigh && ConfidenceLevelFor(&categoryScore) != ConfidenceMedium {
		t.Errorf("category match should land in the mid band or above, got score %d", categoryScore)
	}
}

func TestConfidenceLevelFor(t *testing.T) {
	intPtr := func(i int) *int { return &i }

	tests := []struct {
		name  string
		score *int
		want  ConfidenceLevel
	}{
		{"nil score", nil, ConfidenceNone},
		{"zero score", intPtr(0), ConfidenceNone},
		{"low boundary", intPtr(1), ConfidenceLow},
		{"top of low", intPtr(49), ConfidenceLow},
		{"medium boundary", intPtr(50), ConfidenceMedium},
		{"top of medium", intPtr(79), ConfidenceMedium},
		{"high boundary", intPtr(80), ConfidenceHigh},
		{"maximum", intPtr(100), ConfidenceHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConfidenceLevelFor(tt.score); got != tt.want {
				t.Errorf("ConfidenceLevelFor(%v) = %s, want %s", tt.score, got, tt.want)
			}
		})
	}
}
