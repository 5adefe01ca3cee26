package domain

import (
	"time"
)

// AccountClass identifies which of the five double-entry account classes
// an account belongs to. The class fixes the sign convention and is
// immutable once the account exists.
type AccountClass string

const (
	AccountClassAsset     AccountClass = "asset"
	AccountClassExpense   AccountClass = "expense"
	AccountClassEquity    AccountClass = "equity"
	AccountClassLiability AccountClass = "liability"
	AccountClassIncome    AccountClass = "income"
)

// Valid reports whether the class is one of the five known classes.
func (c AccountClass) Valid() bool {
	switch c {
	case AccountClassAsset, AccountClassExpense, AccountClassEquity,
		AccountClassLiability, AccountClassIncome:
		return true
	}
	return false
}

// DebitNormal reports whether the class accumulates its normal balance on
// the debit side. Asset and Expense accounts are debit-normal; Equity,
// Liability and Income accounts are credit-normal.
func (c AccountClass) DebitNormal() bool {
	return c == AccountClassAsset || c == AccountClassExpense
}

// Account represents one node of the double-entry ledger.
type Account struct {
	ID             string
	GnucashAccount string
	Class          AccountClass
	CreatedAt      time.Time
}

// Validate checks account invariants at creation time.
func (a *Account) Validate() error {
	if !a.Class.Valid() {
		return ErrInvalidAccountClass
	}
	return nil
}
