package domain

import (
	"testing"

	"github.com/oddbank/rpcbankd/internal/currency"
)

func TestDepositWithdrawBalance(t *testing.T) {
	a := NewAccount(1, "alice", "secret")
	if got := a.BalanceOf(currency.USD); got != 0 {
		t.Fatalf("BalanceOf(USD) on fresh account = %d; want 0", got)
	}
	a.Deposit(currency.USD, 1000)
	if got := a.BalanceOf(currency.USD); got != 1000 {
		t.Fatalf("BalanceOf(USD) after deposit = %d; want 1000", got)
	}
	if ok := a.Withdraw(currency.USD, 400); !ok {
		t.Fatal("Withdraw(400) = false; want true")
	}
	if got := a.BalanceOf(currency.USD); got != 600 {
		t.Fatalf("BalanceOf(USD) after withdraw = %d; want 600", got)
	}
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	a := NewAccount(1, "alice", "secret")
	a.Deposit(currency.USD, 100)
	if ok := a.Withdraw(currency.USD, 200); ok {
		t.Fatal("Withdraw(200) against 100 balance = true; want false")
	}
	if got := a.BalanceOf(currency.USD); got != 100 {
		t.Fatalf("balance mutated on failed withdraw: got %d; want 100", got)
	}
}

func TestWithdrawAbsentCurrencyFails(t *testing.T) {
	a := NewAccount(1, "alice", "secret")
	if ok := a.Withdraw(currency.JPY, 1); ok {
		t.Fatal("Withdraw on never-credited currency = true; want false")
	}
}

func TestAuthenticate(t *testing.T) {
	a := NewAccount(1, "alice", "secret")

	if usernameOK, passwordOK := a.Authenticate("bob", "secret"); usernameOK || passwordOK {
		t.Fatalf("Authenticate(wrong username) = (%v, %v); want (false, false)", usernameOK, passwordOK)
	}
	if usernameOK, passwordOK := a.Authenticate("alice", "wrong"); !usernameOK || passwordOK {
		t.Fatalf("Authenticate(wrong password) = (%v, %v); want (true, false)", usernameOK, passwordOK)
	}
	if usernameOK, passwordOK := a.Authenticate("alice", "secret"); !usernameOK || !passwordOK {
		t.Fatalf("Authenticate(correct) = (%v, %v); want (true, true)", usernameOK, passwordOK)
	}
}
