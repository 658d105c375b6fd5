package checkout

import (
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/domain"
)

var (
	ErrNoDraft          = errors.New("no draft available")
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrNotAuthenticated = errors.New("sign in to continue to payment")
	ErrNotStarted       = errors.New("checkout has not begun")
	ErrWrongStep        = errors.New("operation not allowed at the current checkout step")
)

// PaymentFailedError carries a confirm status other than succeeded.
type PaymentFailedError struct {
	Status domain.PaymentStatus
}

func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("payment not completed: %s", e.Status)
}
