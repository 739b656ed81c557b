package models

import "fmt"

// FieldViolation names one invalid field on an incoming command
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the full list of field violations for a command
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("%s: %s", e.Violations[0].Field, e.Violations[0].Message)
	}
	return fmt.Sprintf("%d invalid fields", len(e.Violations))
}

// AddLineRequest asks to add an offer to the caller's open cart
type AddLineRequest struct {
	OfferID  int64 `json:"offer_id"`
	Quantity int   `json:"quantity"`
}

// Validate returns all field violations on the request
func (req *AddLineRequest) Validate() error {
	var violations []FieldViolation

	if req.OfferID <= 0 {
		violations = append(violations, FieldViolation{Field: "offer_id", Message: "offer id is required"})
	}
	if req.Quantity <= 0 {
		violations = append(violations, FieldViolation{Field: "quantity", Message: "quantity must be positive"})
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// UpdateLineRequest asks to change the quantity of an offer already in the
// cart. A new quantity of zero removes the line.
type UpdateLineRequest struct {
	OfferID     int64 `json:"offer_id"`
	NewQuantity int   `json:"new_quantity"`
}

// Validate returns all field violations on the request
func (req *UpdateLineRequest) Validate() error {
	var violations []FieldViolation

	if req.OfferID <= 0 {
		violations = append(violations, FieldViolation{Field: "offer_id", Message: "offer id is required"})
	}
	if req.NewQuantity < 0 {
		violations = append(violations, FieldViolation{Field: "new_quantity", Message: "quantity cannot be negative"})
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// SubmitPaymentRequest asks to run the payment for a checked-out cart
type SubmitPaymentRequest struct {
	CartID int64         `json:"cart_id"`
	Method PaymentMethod `json:"method"`
	Token  string        `json:"token"`
}

// Validate returns all field violations on the request
func (req *SubmitPaymentRequest) Validate() error {
	var violations []FieldViolation

	if req.CartID <= 0 {
		violations = append(violations, FieldViolation{Field: "cart_id", Message: "cart id is required"})
	}
	if err := ValidatePaymentMethod(req.Method); err != nil {
		violations = append(violations, FieldViolation{Field: "method", Message: err.Error()})
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
