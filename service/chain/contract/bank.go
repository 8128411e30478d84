package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	bCtx "github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/base/log"
	"github.com/x-xyz/escrowapi/domain"
	"github.com/x-xyz/escrowapi/domain/bank"
	"github.com/x-xyz/escrowapi/service/chain"
)

// NativeBank pays out native value from the escrow account. A failed send
// surfaces to the caller unchanged; nothing is retried here.
type NativeBank struct {
	chainService chain.Client
	chainId      int32
}

func NewNativeBank(chainService chain.Client, chainId int32) bank.Bank {
	return &NativeBank{
		chainService: chainService,
		chainId:      chainId,
	}
}

func (b *NativeBank) Send(ctx bCtx.Ctx, to domain.Address, amount *big.Int) error {
	txHash, err := b.chainService.SendValue(ctx, b.chainId, common.HexToAddress(string(to)), amount)
	if err != nil {
		return err
	}
	ctx.WithFields(log.Fields{
		"to":     to,
		"amount": amount.String(),
		"tx":     txHash,
	}).Info("native value sent")
	return nil
}
