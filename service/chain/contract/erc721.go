package contract

import (
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	baseabi "github.com/x-xyz/escrowapi/base/abi"
	bCtx "github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/domain"
	"github.com/x-xyz/escrowapi/domain/registry"
	"github.com/x-xyz/escrowapi/service/chain"
)

// Erc721 adapts on-chain ERC721 collections to the registry.Registry
// contract. Custody moves are transactions signed by the escrow account;
// ownership reads are plain calls.
type Erc721 struct {
	chainService      chain.Client
	chainId           int32
	abi               ethabi.ABI
	erc721InterfaceId [4]byte
}

func NewErc721(chainService chain.Client, chainId int32) registry.Registry {
	var interfaceId [4]byte
	copy(interfaceId[:], common.Hex2Bytes("80ac58cd"))
	return &Erc721{
		abi:               baseabi.ERC721TokenABI,
		chainService:      chainService,
		chainId:           chainId,
		erc721InterfaceId: interfaceId,
	}
}

func (e *Erc721) Supports721Interface(ctx bCtx.Ctx, collection domain.Address) (bool, error) {
	method := "supportsInterface"
	unpacked, err := e.chainService.Call(ctx, e.chainId, common.HexToAddress(string(collection)), nil, e.abi, method, e.erc721InterfaceId)
	if err != nil {
		return false, err
	}
	return unpacked[0].(bool), nil
}

func (e *Erc721) OwnerOf(ctx bCtx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	id, err := tokenId.ToBigInt()
	if err != nil {
		return "", err
	}
	method := "ownerOf"
	unpacked, err := e.chainService.Call(ctx, e.chainId, common.HexToAddress(string(collection)), nil, e.abi, method, id)
	if err != nil {
		return "", err
	}
	return domain.Address(strings.ToLower(unpacked[0].(common.Address).String())), nil
}

func (e *Erc721) TransferCustody(ctx bCtx.Ctx, collection domain.Address, from domain.Address, to domain.Address, tokenId domain.TokenId) error {
	id, err := tokenId.ToBigInt()
	if err != nil {
		return err
	}
	method := "transferFrom"
	_, err = e.chainService.Transact(ctx, e.chainId, common.HexToAddress(string(collection)), nil, e.abi, method,
		common.HexToAddress(string(from)), common.HexToAddress(string(to)), id)
	return err
}
