// Package allocation implements the income split and category
// allocation arithmetic.
//
// All computations work on whole currency units and use two distinct
// rounding policies: Allocate floors every share and hands the
// remainder to the first category, DistributeProportional rounds every
// share independently. They look similar but are not interchangeable,
// keep them separate.
package allocation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Share is one category's percentage of the spendable amount.
type Share struct {
	CategoryID uuid.UUID
	Percentage int
}

// Amount is one category's allocated amount.
type Amount struct {
	CategoryID uuid.UUID
	Amount     decimal.Decimal
}

// Split divides an income into the mandatory deductions and the
// spendable rest.
//
// Tithing and saving are floored; spendable is computed by
// subtraction and therefore absorbs all rounding residue, so the
// three always sum to exactly the input amount.
func Split(amount decimal.Decimal, tithingPercent, savingPercent int) (tithing, saving, spendable decimal.Decimal) {
	tithing = percentFloor(amount, tithingPercent)
	saving = percentFloor(amount, savingPercent)
	spendable = amount.Sub(tithing).Sub(saving)
	return
}

// Allocate distributes a total over the shares, flooring each amount
// and adding the rounding remainder to the first share. The caller
// provides the shares in a stable order (category catalog order); the
// result preserves it.
//
// The returned amounts always sum to exactly the total. An empty
// share list allocates nothing.
func Allocate(total decimal.Decimal, shares []Share) []Amount {
	if len(shares) == 0 {
		return []Amount{}
	}

	amounts := make([]Amount, 0, len(shares))
	allocated := decimal.Zero
	for _, share := range shares {
		amount := percentFloor(total, share.Percentage)
		allocated = allocated.Add(amount)
		amounts = append(amounts, Amount{CategoryID: share.CategoryID, Amount: amount})
	}

	// The rounding remainder goes to the first category. This biases
	// the error toward one category, which is accepted behavior.
	if difference := total.Sub(allocated); !difference.IsZero() {
		amounts[0].Amount = amounts[0].Amount.Add(difference)
	}

	return amounts
}

// DistributeProportional distributes an amount over existing
// allocations, each category receiving its current share of the total
// allocated sum, rounded to whole units independently.
//
// Unlike Allocate, no remainder correction takes place: the rounded
// shares may differ from the input amount by a few units. This
// mirrors how occasional income is spread over an in-flight period.
func DistributeProportional(amount decimal.Decimal, allocations []Amount) []Amount {
	totalAllocated := decimal.Zero
	for _, allocation := range allocations {
		totalAllocated = totalAllocated.Add(allocation.Amount)
	}

	if totalAllocated.IsZero() {
		return []Amount{}
	}

	additions := make([]Amount, 0, len(allocations))
	for _, allocation := range allocations {
		share := amount.Mul(allocation.Amount).Div(totalAllocated).Round(0)
		additions = append(additions, Amount{CategoryID: allocation.CategoryID, Amount: share})
	}

	return additions
}

func percentFloor(amount decimal.Decimal, percent int) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(percent))).Div(oneHundred).Floor()
}
