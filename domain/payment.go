package domain

// PaymentStatus mirrors the payment processor's intent status.
type PaymentStatus string

const (
	PaymentStatusRequiresPaymentMethod PaymentStatus = "requires_payment_method"
	PaymentStatusRequiresConfirmation  PaymentStatus = "requires_confirmation"
	PaymentStatusRequiresAction        PaymentStatus = "requires_action"
	PaymentStatusProcessing            PaymentStatus = "processing"
	PaymentStatusRequiresCapture       PaymentStatus = "requires_capture"
	PaymentStatusCanceled              PaymentStatus = "canceled"
	PaymentStatusSucceeded             PaymentStatus = "succeeded"
)

// Succeeded is the only status treated as a successful payment.
func (s PaymentStatus) Succeeded() bool {
	return s == PaymentStatusSucceeded
}

func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentIntent is transient: it exists for one confirm attempt and is never persisted.
type PaymentIntent struct {
	OrderID         int64  `json:"-"`
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

type ConfirmResult struct {
	Status      PaymentStatus `json:"status"`
	OrderID     int64         `json:"order_id"`
	OrderNumber string        `json:"order_number"`
}

func (r ConfirmResult) Succeeded() bool {
	return r.Status.Succeeded()
}
