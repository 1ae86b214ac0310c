package randompkg

import (
	"strings"
	"testing"
)

func TestCode(t *testing.T) {
	t.Parallel()

	if got := len(CodeAlphabet); got != 62 {
		t.Fatalf("len(CodeAlphabet) = %d, want 62", got)
	}

	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code := Code(6)

		if len(code) != 6 {
			t.Fatalf("Code(6) = %q, want 6 characters", code)
		}

		for _, c := range code {
			if !strings.ContainsRune(CodeAlphabet, c) {
				t.Fatalf("Code(6) = %q contains %q outside the alphabet", code, c)
			}
		}

		seen[code] = true
	}

	if len(seen) < 90 {
		t.Errorf("Code(6) produced %d distinct values out of 100, want close to 100", len(seen))
	}
}

func TestMoneyAmountBetween(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		got := MoneyAmountBetween(10, 20)

		if got.LessThan(MoneyAmountBetween(10, 10)) || got.Exponent() < -2 {
			t.Fatalf("MoneyAmountBetween(10, 20) = %v, want value in range with 2 decimals", got)
		}
	}
}
