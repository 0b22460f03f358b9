package bps

import (
	"math/big"
	"testing"
)

func TestCompute_SumsToGross(t *testing.T) {
	cases := []struct {
		name       string
		gross      int64
		feeBps     uint64
		royaltyBps uint64
	}{
		{"no fees", 1000, 0, 0},
		{"fee only", 1000, 250, 0},
		{"royalty only", 1000, 0, 500},
		{"both", 12345, 30, 300},
		{"odd remainders", 7, 33, 777},
		{"full fee", 999, 10000, 0},
		{"full royalty after fee", 999, 50, 10000},
		{"one unit", 1, 30, 300},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gross := big.NewInt(tc.gross)
			s := Compute(gross, tc.feeBps, tc.royaltyBps)

			sum := new(big.Int).Add(s.Fee, s.Royalty)
			sum.Add(sum, s.Proceeds)
			if sum.Cmp(gross) != 0 {
				t.Errorf("fee %v + royalty %v + proceeds %v = %v, want %v",
					s.Fee, s.Royalty, s.Proceeds, sum, gross)
			}

			if s.Fee.Sign() < 0 || s.Royalty.Sign() < 0 || s.Proceeds.Sign() < 0 {
				t.Errorf("negative component in split %+v", s)
			}
		})
	}
}

func TestCompute_Order(t *testing.T) {
	// 30 bps platform fee, 300 bps royalty on a gross of 10 units at 18 decimals.
	// fee = 0.03, royalty = (10 - 0.03) * 3% = 0.2991, proceeds = 9.6709.
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	gross := new(big.Int).Mul(big.NewInt(10), unit)

	s := Compute(gross, 30, 300)

	wantFee, _ := new(big.Int).SetString("30000000000000000", 10)
	wantRoyalty, _ := new(big.Int).SetString("299100000000000000", 10)
	wantProceeds, _ := new(big.Int).SetString("9670900000000000000", 10)

	if s.Fee.Cmp(wantFee) != 0 {
		t.Errorf("fee = %v, want %v", s.Fee, wantFee)
	}
	if s.Royalty.Cmp(wantRoyalty) != 0 {
		t.Errorf("royalty = %v, want %v", s.Royalty, wantRoyalty)
	}
	if s.Proceeds.Cmp(wantProceeds) != 0 {
		t.Errorf("proceeds = %v, want %v", s.Proceeds, wantProceeds)
	}
}

func TestGross(t *testing.T) {
	g := Gross(big.NewInt(250), 4)
	if g.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("Gross(250, 4) = %v, want 1000", g)
	}
}

func TestValid(t *testing.T) {
	if !Valid(0) || !Valid(10000) {
		t.Error("0 and 10000 bps must be valid")
	}
	if Valid(10001) {
		t.Error("10001 bps must be invalid")
	}
}
