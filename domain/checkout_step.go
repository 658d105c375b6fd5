package domain

// CheckoutStep is the position of the checkout flow. It lives in UI state only.
type CheckoutStep int

const (
	StepBilling  CheckoutStep = 1
	StepShipping CheckoutStep = 2
	StepReview   CheckoutStep = 3
	StepPayment  CheckoutStep = 4
)

func (s CheckoutStep) Valid() bool {
	return s >= StepBilling && s <= StepPayment
}

func (s CheckoutStep) IsTerminal() bool {
	return s == StepPayment
}

// Next returns the following step; Payment has no successor.
func (s CheckoutStep) Next() CheckoutStep {
	if s >= StepPayment {
		return StepPayment
	}
	return s + 1
}

// Prev returns the preceding step; Billing has no predecessor.
func (s CheckoutStep) Prev() CheckoutStep {
	if s <= StepBilling {
		return StepBilling
	}
	return s - 1
}

// String representation (for logging)
func (s CheckoutStep) String() string {
	switch s {
	case StepBilling:
		return "BILLING"
	case StepShipping:
		return "SHIPPING"
	case StepReview:
		return "REVIEW"
	case StepPayment:
		return "PAYMENT"
	default:
		return "UNKNOWN"
	}
}
