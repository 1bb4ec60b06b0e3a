package storage

import "errors"

var (
	ErrSlotIsBooked          = errors.New("slot is already booked")
	ErrTransactionNotFound   = errors.New("transaction is not found")
	ErrPaymentIntentNotFound = errors.New("payment intent is not found")
	ErrPastDate              = errors.New("cannot create booking for a past date")
	ErrTransactionNotActive  = errors.New("transaction is not active")
	ErrIntentStatusConflict  = errors.New("payment intent status has changed")
)
