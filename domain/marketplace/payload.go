package marketplace

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/x-xyz/escrowapi/domain"
)

// PricePayloadLength is the width of a single abi-encoded uint256.
const PricePayloadLength = 32

// DecodePricePayload decodes the custody-bridge payload: one big-endian
// uint256 price. Callers are expected to have handled the zero-length probe
// case already; any other length fails.
func DecodePricePayload(data []byte) (*big.Int, error) {
	if len(data) != PricePayloadLength {
		return nil, domain.ErrInvalidDataLength
	}
	return new(big.Int).SetBytes(data), nil
}

// EncodePricePayload is the inverse of DecodePricePayload. It is what a
// depositor attaches to a safe transfer to list in one step.
func EncodePricePayload(price *big.Int) []byte {
	return math.U256Bytes(new(big.Int).Set(price))
}
