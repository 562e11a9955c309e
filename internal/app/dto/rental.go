package dto

import (
	"time"

	domainidentity "rentable/internal/domain/identity"
	domainrental "rentable/internal/domain/rental"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type RentalView struct {
	ID              string    `json:"id"`
	ItemID          string    `json:"item_id"`
	RenterID        string    `json:"renter_id"`
	OwnerID         string    `json:"owner_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	Status          string    `json:"status"`
	Deposit         MoneyDTO  `json:"deposit"`
	PlatformFee     MoneyDTO  `json:"platform_fee"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	ExpiresAt       time.Time `json:"expires_at,omitzero"`
	CreatedAt       time.Time `json:"created_at"`
}

func MapRental(r *domainrental.Rental) RentalView {
	return RentalView{
		ID:              string(r.ID),
		ItemID:          string(r.ItemID),
		RenterID:        r.RenterID,
		OwnerID:         r.OwnerID,
		StartDate:       r.Window.Start,
		EndDate:         r.Window.End,
		Status:          string(r.Status),
		Deposit:         MoneyDTO{Amount: r.Deposit.Amount, Currency: r.Deposit.Currency},
		PlatformFee:     MoneyDTO{Amount: r.PlatformFee.Amount, Currency: r.PlatformFee.Currency},
		RejectionReason: r.RejectionReason,
		ExpiresAt:       r.ExpiresAt,
		CreatedAt:       r.CreatedAt,
	}
}

// RentalExportRow is the flat projection handed to external reporting tools.
type RentalExportRow struct {
	RenterName  string    `json:"renter_name"`
	RenterEmail string    `json:"renter_email"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `json:"status"`
	PlatformFee int64     `json:"platform_fee"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
	CreatedAt   time.Time `json:"created_at"`
}

func MapExportRow(r *domainrental.Rental, renter *domainidentity.User) RentalExportRow {
	row := RentalExportRow{
		StartDate:   r.Window.Start,
		EndDate:     r.Window.End,
		Status:      string(r.Status),
		PlatformFee: r.PlatformFee.Amount,
		ExpiresAt:   r.ExpiresAt,
		CreatedAt:   r.CreatedAt,
	}
	if renter != nil {
		row.RenterName = renter.Name
		row.RenterEmail = renter.Email
	}
	return row
}
