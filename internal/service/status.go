package service

import "github.com/rasa-pos/api/internal/enum"

// Fulfillment and payment are independent, forward-only state machines.
// served and habis are terminal; success and paid are terminal.
var fulfillmentTransitions = map[string][]string{
	enum.OrderStatusPending: {enum.OrderStatusCooking, enum.OrderStatusHabis},
	enum.OrderStatusCooking: {enum.OrderStatusReady, enum.OrderStatusHabis},
	enum.OrderStatusReady:   {enum.OrderStatusServed},
}

var paymentTransitions = map[string][]string{
	enum.PaymentStatusPending: {enum.PaymentStatusSuccess, enum.PaymentStatusPaid, enum.PaymentStatusFailed},
	enum.PaymentStatusFailed:  {enum.PaymentStatusPending, enum.PaymentStatusSuccess, enum.PaymentStatusPaid},
}

// ValidateStatusTransition checks a fulfillment status change.
func ValidateStatusTransition(from, to string) error {
	if !enum.IsOrderStatus(to) {
		return ErrInvalidStatus
	}
	return validateTransition(fulfillmentTransitions, "status", from, to)
}

// ValidatePaymentTransition checks a payment status change.
func ValidatePaymentTransition(from, to string) error {
	if !enum.IsPaymentStatus(to) {
		return ErrInvalidPaymentStatus
	}
	return validateTransition(paymentTransitions, "paymentStatus", from, to)
}

func validateTransition(table map[string][]string, field, from, to string) error {
	for _, s := range table[from] {
		if s == to {
			return nil
		}
	}
	return &TransitionError{Field: field, From: from, To: to}
}
