package domain

import "errors"

// Failure taxonomy shared by services, adapters and the HTTP layer.
//
// Conflict errors mean the caller lost a lock race and should retry later.
// NotFound and invalid-state errors are terminal for the request. ErrTxFailed
// wraps an underlying commit/abort failure; anything else is unexpected and
// propagates as-is.
var (
	ErrLockConflict = errors.New("another operation is in progress")

	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not found in cart")

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")

	ErrTxFailed = errors.New("transaction failed")
)
