package models

import "testing"

func TestValidatePaymentMethod(t *testing.T) {
	for _, method := range []PaymentMethod{MethodCard, MethodPaypal, MethodBankTransfer} {
		if err := ValidatePaymentMethod(method); err != nil {
			t.Errorf("ValidatePaymentMethod(%q) = %v, want nil", method, err)
		}
	}

	if err := ValidatePaymentMethod("crypto"); err == nil {
		t.Error("ValidatePaymentMethod should reject unknown methods")
	}
}

func TestPaymentStatusHelpers(t *testing.T) {
	tests := []struct {
		status    PaymentStatus
		isPending bool
		isFinal   bool
	}{
		{PaymentPending, true, false},
		{PaymentSucceeded, false, true},
		{PaymentFailed, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			p := Payment{Status: tt.status}
			if got := p.IsPending(); got != tt.isPending {
				t.Errorf("IsPending() = %v, want %v", got, tt.isPending)
			}
			if got := p.IsFinal(); got != tt.isFinal {
				t.Errorf("IsFinal() = %v, want %v", got, tt.isFinal)
			}
		})
	}
}

func TestPaymentAmountInCurrency(t *testing.T) {
	p := Payment{AmountCents: 12345}
	if got := p.AmountInCurrency(); got != 123.45 {
		t.Errorf("AmountInCurrency() = %v, want 123.45", got)
	}
}

func TestSubmitPaymentRequestValidate(t *testing.T) {
	valid := SubmitPaymentRequest{CartID: 1, Method: MethodCard}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	invalid := SubmitPaymentRequest{CartID: 0, Method: "crypto"}
	err := invalid.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Violations) != 2 {
		t.Errorf("expected 2 violations, got %d", len(verr.Violations))
	}
}
