package registry

import (
	"github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/domain"
)

// ReceiverAck is the fixed acknowledgment a token receiver must return for
// the registry to treat a safe transfer as accepted.
// bytes4(keccak256("onERC721Received(address,address,uint256,bytes)"))
var ReceiverAck = [4]byte{0x15, 0x0b, 0x7a, 0x02}

// Registry is the external asset registry holding per-token custody.
// The marketplace consumes transfers and ownership queries; it never mutates
// registry state by any other means.
type Registry interface {
	// TransferCustody moves tokenId from `from` to `to`. It fails when `from`
	// is not the current holder or the mover is unauthorized; the error is
	// propagated to the caller unchanged.
	TransferCustody(c ctx.Ctx, collection domain.Address, from domain.Address, to domain.Address, tokenId domain.TokenId) error
	// OwnerOf returns the current holder of tokenId.
	OwnerOf(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error)
	// Supports721Interface reports whether collection implements the ERC721
	// standard interface via ERC165 detection.
	Supports721Interface(c ctx.Ctx, collection domain.Address) (bool, error)
}
