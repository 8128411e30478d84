package bank

import (
	"math/big"

	"github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/domain"
)

// Bank is the native value-transfer primitive. A failed Send is fatal to the
// enclosing marketplace operation; nothing is retried.
type Bank interface {
	// Send delivers amount (wei) to `to`, failing if undeliverable
	Send(c ctx.Ctx, to domain.Address, amount *big.Int) error
}
