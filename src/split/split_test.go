package split

import (
	"testing"

	"github.com/shopspring/decimal"
)

func pct(values map[int64]string) map[int64]decimal.Decimal {
	out := make(map[int64]decimal.Decimal, len(values))
	for userID, v := range values {
		out[userID] = decimal.RequireFromString(v)
	}
	return out
}

func TestComputeSplits(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		percentages map[int64]string
		want        map[int64]string
		wantErr     bool
	}{
		{
			name:        "even two-way split",
			amount:      "-45.20",
			percentages: map[int64]string{1: "50", 2: "50"},
			want:        map[int64]string{1: "22.60", 2: "22.60"},
		},
		{
			name:        "uneven split",
			amount:      "-100.00",
			percentages: map[int64]string{1: "70", 2: "30"},
			want:        map[int64]string{1: "70.00", 2: "30.00"},
		},
		{
			name:        "positive amount splits the same as negative",
			amount:      "45.20",
			percentages: map[int64]string{1: "50", 2: "50"},
			want:        map[int64]string{1: "22.60", 2: "22.60"},
		},
		{
			name:        "three-way split assigns residual cent to largest share",
			amount:      "-100.00",
			percentages: map[int64]string{1: "33.33", 2: "33.33", 3: "33.34"},
			want:        map[int64]string{1: "33.33", 2: "33.33", 3: "33.34"},
		},
		{
			name:        "residual from rounding lands on one member",
			amount:      "-0.10",
			percentages: map[int64]string{1: "33.33", 2: "33.33", 3: "33.34"},
			// raw shares are 0.03333/0.03333/0.03334, rounded 0.03 each,
			// residual 0.01 goes to user 3
			want: map[int64]string{1: "0.03", 2: "0.03", 3: "0.04"},
		},
		{
			name:        "single member takes everything",
			amount:      "-12.34",
			percentages: map[int64]string{7: "100"},
			want:        map[int64]string{7: "12.34"},
		},
		{
			name:        "empty percentages error",
			amount:      "-10.00",
			percentages: map[int64]string{},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeSplits(decimal.RequireFromString(tt.amount), pct(tt.percentages))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ComputeSplits() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if len(got) != len(tt.want) {
				t.Fatalf("ComputeSplits() returned %d shares, want %d", len(got), len(tt.want))
			}
			total := decimal.Zero
			for userID, wantShare := range tt.want {
				share, ok := got[userID]
				if !ok {
					t.Fatalf("missing share for user %d", userID)
				}
				if !share.Equal(decimal.RequireFromString(wantShare)) {
					t.Errorf("share for user %d = %s, want %s", userID, share, wantShare)
				}
				total = total.Add(share)
			}
			if want := decimal.RequireFromString(tt.amount).Abs(); !total.Equal(want) {
				t.Errorf("shares sum to %s, want %s", total, want)
			}
		})
	}
}

// Shares must reassemble exactly into the original amount for any
// percentage set that sums to 100.
func TestComputeSplitsConservation(t *testing.T) {
	amounts := []string{"-0.01", "-0.03", "-19.99", "-45.20", "-12345.67"}
	percentages := pct(map[int64]string{1: "12.5", 2: "12.5", 3: "25", 4: "50"})

	for _, a := range amounts {
		amount := decimal.RequireFromString(a)
		shares, err := ComputeSplits(amount, percentages)
		if err != nil {
			t.Fatalf("ComputeSplits(%s) error = %v", a, err)
		}
		total := decimal.Zero
		for _, share := range shares {
			total = total.Add(share)
		}
		if !total.Equal(amount.Abs()) {
			t.Errorf("ComputeSplits(%s) shares sum to %s, want %s", a, total, amount.Abs())
		}
	}
}
