package orders

import (
	"errors"
	"fmt"
)

// ErrBusinessRule is the root of the recoverable business-rule violations.
// Checking errors.Is(err, ErrBusinessRule) matches all of them.
var ErrBusinessRule = errors.New("business rule violation")

var (
	ErrEmptyCart         = fmt.Errorf("%w: cannot checkout with empty cart", ErrBusinessRule)
	ErrInvalidTransition = fmt.Errorf("%w: invalid order status transition", ErrBusinessRule)
)
