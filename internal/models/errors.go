package models

import "errors"

// Common errors used throughout the application
var (
	ErrOfferNotFound   = errors.New("offer not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrLineNotFound    = errors.New("offer is not in the cart")
	ErrUnauthorized    = errors.New("unauthorized access")
	ErrInvalidInput    = errors.New("invalid input")

	// Inventory errors
	ErrInsufficientStock = errors.New("insufficient offer stock")
	ErrOfferUnavailable  = errors.New("offer is not available for purchase")

	// Cart state errors
	ErrCartNotOpen            = errors.New("cart is not open")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrCartNotReadyForPayment = errors.New("cart has not been checked out")
	ErrCartAlreadyFinalized   = errors.New("cart has already been finalized")

	// Payment errors
	ErrPaymentDeclined     = errors.New("payment was declined")
	ErrPaymentGatewayError = errors.New("payment gateway error")

	// Ticket errors
	ErrTicketIssuanceFailure = errors.New("ticket issuance failed")
	ErrTicketAlreadyScanned  = errors.New("ticket has already been scanned")
)
