package marketplace

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/x-xyz/escrowapi/domain"
)

func TestPricePayloadRoundTrip(t *testing.T) {
	req := require.New(t)

	cases := []struct {
		desc  string
		price *big.Int
	}{
		{
			desc:  "zero price",
			price: big.NewInt(0),
		},
		{
			desc:  "one wei",
			price: big.NewInt(1),
		},
		{
			desc:  "one ether",
			price: new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
		},
		{
			desc:  "max uint256",
			price: new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)),
		},
	}
	for _, c := range cases {
		data := EncodePricePayload(c.price)
		req.Len(data, PricePayloadLength, c.desc)

		price, err := DecodePricePayload(data)
		req.NoError(err, c.desc)
		req.Zero(price.Cmp(c.price), c.desc)
	}
}

func TestDecodePricePayloadLength(t *testing.T) {
	req := require.New(t)

	for _, n := range []int{1, 4, 20, 31, 33, 64} {
		_, err := DecodePricePayload(make([]byte, n))
		req.ErrorIs(err, domain.ErrInvalidDataLength, "length %d", n)
	}
}
