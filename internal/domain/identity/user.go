package identity

import (
	"context"
	"errors"

	"rentable/internal/domain/shared/money"
)

var (
	ErrNotFound          = errors.New("identity: user not found")
	ErrInsufficientFunds = errors.New("identity: insufficient balance")
)

type UserID string

// User is the narrow profile slice the rental engine needs: identity for
// authorization checks and a balance for deposit debits.
type User struct {
	ID      UserID
	Name    string
	Email   string
	Balance money.Money
	Version int64
}

type Repository interface {
	ByID(ctx context.Context, id UserID) (*User, error)
	Save(ctx context.Context, user *User) error
}

// Debit removes amount from the balance, failing before any mutation when
// the balance cannot cover it.
func (u *User) Debit(amount money.Money) error {
	if !amount.IsPositive() {
		return nil
	}
	covers, err := u.Balance.Covers(amount)
	if err != nil {
		return err
	}
	if !covers {
		return ErrInsufficientFunds
	}
	next, err := u.Balance.Sub(amount)
	if err != nil {
		return err
	}
	u.Balance = next
	return nil
}

func (u *User) Credit(amount money.Money) error {
	if !amount.IsPositive() {
		return nil
	}
	next, err := u.Balance.Add(amount)
	if err != nil {
		return err
	}
	u.Balance = next
	return nil
}
