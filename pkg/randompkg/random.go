// Package randompkg provides functionality for generating random application items.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz"
	// CodeAlphabet holds the 62 symbols one-time codes are drawn from.
	CodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Float64 is a shortcut for generating a random float between 0 and 1 using crypto/rand.
func Float64() float64 {
	return float64(Intn(1<<32)) / (1 << 32)
}

// FloatBetween generates a random decimal number between min and max rounded to 2 decimals.
func FloatBetween(min, max float64) float64 {
	numInRange := min + Float64()*(max-min)
	return math.Floor(numInRange*100) / 100
}

func fromAlphabet(abc string, n int) string {
	var sb strings.Builder

	k := len(abc)

	for i := 0; i < n; i++ {
		c := abc[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// String generates a random lowercase string of length n.
func String(n int) string {
	return fromAlphabet(alphabet, n)
}

// Code generates a random one-time code of length n drawn from CodeAlphabet.
func Code(n int) string {
	return fromAlphabet(CodeAlphabet, n)
}

// Name generates a random display name.
func Name() string {
	return String(8)
}

// AccountNumber generates a random 16 digits account number.
func AccountNumber() string {
	return fromAlphabet("0123456789", 16)
}

// MoneyAmountBetween generates a random amount of money between min and max rounded to 2 decimals.
func MoneyAmountBetween(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(FloatBetween(min, max))
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}
