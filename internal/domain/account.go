// Package domain implements the Account value type the RPC dispatcher
// operates on, grounded on
// original_source/server-c/src/core/accounts.h.
//
// Unlike the original, which stores balances as float per currency (and
// leaves Withdraw on a missing currency undefined behavior — an empty
// `if` block), this stores balances as int64 minor units (millionths of
// a major unit; see internal/bank's unitsPerMajor) and treats a missing currency as a zero balance, per
// spec.md's resolution of that Open Question.
package domain

import (
	"fmt"

	"github.com/oddbank/rpcbankd/internal/currency"
)

// Account is a single ledger entry: identity, credentials, and a
// per-currency balance in integer minor units.
type Account struct {
	ID       int32
	Username string
	Password string
	balances map[currency.Currency]int64
}

// NewAccount constructs an empty account with the given identity and
// credentials. Balances start absent (equivalent to zero) for every
// currency, matching the original's default-constructed unordered_map.
func NewAccount(id int32, username, password string) *Account {
	return &Account{
		ID:       id,
		Username: username,
		Password: password,
		balances: make(map[currency.Currency]int64),
	}
}

// Authenticate reports whether username/password match this account,
// mirroring the original handlers' two-step auth chain (username first,
// then password) so callers can distinguish the two failure messages.
func (a *Account) Authenticate(username, password string) (usernameOK, passwordOK bool) {
	usernameOK = a.Username == username
	passwordOK = usernameOK && a.Password == password
	return usernameOK, passwordOK
}

// BalanceOf returns the account's balance in the given currency, in minor
// units. A currency never credited reads as zero — `GetBalance` in the
// original defaults to 0.0 the same way.
func (a *Account) BalanceOf(c currency.Currency) int64 {
	return a.balances[c]
}

// Deposit credits amount (minor units) to the given currency, creating the
// entry if absent. The sign of amount is not checked, here or by the
// internal/bank handlers that call it; a negative amount lowers the
// balance.
func (a *Account) Deposit(c currency.Currency, amount int64) {
	a.balances[c] += amount
}

// Withdraw debits amount (minor units) from the given currency if
// sufficient funds exist. It reports ok=false without mutating state when
// the balance (zero for an uncredited currency) is insufficient — this is
// the resolved, defined behavior standing in for the original's undefined
// missing-currency withdraw.
func (a *Account) Withdraw(c currency.Currency, amount int64) (ok bool) {
	if a.balances[c] < amount {
		return false
	}
	a.balances[c] -= amount
	return true
}

// String renders the account the way the original's `Account::ToString`
// does for the "account created: ..." response text.
func (a *Account) String() string {
	return fmt.Sprintf("Account{id=%d, username=%s}", a.ID, a.Username)
}
