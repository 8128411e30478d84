package bridge

import (
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/x-xyz/escrowapi/base/abi"
	bCtx "github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/base/log"
	"github.com/x-xyz/escrowapi/base/metrics"
	"github.com/x-xyz/escrowapi/domain"
	"github.com/x-xyz/escrowapi/domain/marketplace"
	"github.com/x-xyz/escrowapi/domain/registry"
	"github.com/x-xyz/escrowapi/service/chain"
	"github.com/x-xyz/escrowapi/service/query"
)

var metOnce sync.Once
var met metrics.Service

var transferSig = abi.ERC721TokenABI.Events["Transfer"].ID

// erc721 Transfer carries from/to/tokenId as indexed topics; the erc20 event
// shares the signature hash but indexes only two of them.
const transferTopicCount = 4

type TransferListenerCfg struct {
	ChainId        int32
	Market         domain.Address
	Interval       time.Duration
	FollowDistance uint64
	Mongo          query.Mongo
	ChainClient    chain.Client
	Registry       registry.Registry
	Marketplace    marketplace.UseCase
	ErrorCh        chan<- error
}

// TransferListener watches the configured chain for token transfers into the
// escrow account and feeds them to the marketplace custody callback. Deposits
// made with a safe transfer carry the listing price in the transfer calldata;
// custody pulls issued by the escrow account itself are the direct list path
// and are skipped here.
type TransferListener struct {
	chainId        int32
	market         domain.Address
	interval       time.Duration
	followDistance uint64
	q              query.Mongo
	chainClient    chain.Client
	registry       registry.Registry
	marketplace    marketplace.UseCase
	signer         types.Signer
	errorCh        chan<- error
	state          *domain.BridgeState
	stoppedCh      chan interface{}
}

func NewTransferListener(cfg *TransferListenerCfg) *TransferListener {
	metOnce.Do(func() {
		met = metrics.New("bridge")
	})
	return &TransferListener{
		chainId:        cfg.ChainId,
		market:         cfg.Market.ToLower(),
		interval:       cfg.Interval,
		followDistance: cfg.FollowDistance,
		q:              cfg.Mongo,
		chainClient:    cfg.ChainClient,
		registry:       cfg.Registry,
		marketplace:    cfg.Marketplace,
		signer:         types.LatestSignerForChainID(big.NewInt(int64(cfg.ChainId))),
		errorCh:        cfg.ErrorCh,
		stoppedCh:      make(chan interface{}),
	}
}

func (l *TransferListener) Start(ctx bCtx.Ctx) {
	go func() {
		defer close(l.stoppedCh)
		if err := l.loop(ctx); err != nil {
			l.errorCh <- err
		}
	}()
}

func (l *TransferListener) Wait() {
	<-l.stoppedCh
}

func (l *TransferListener) loop(ctx bCtx.Ctx) error {
	state, err := l.setupState(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("setupState failed")
		return err
	}
	l.state = state

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			current, err := l.chainClient.BlockNumber(ctx, l.chainId)
			if err != nil {
				ctx.WithField("err", err).Error("chainClient.BlockNumber failed")
				return err
			}
			met.BumpAvg("blockchain.lastBlock", float64(current), "chainId", fmt.Sprint(l.chainId))

			target := current - l.followDistance
			start := l.state.LastBlockProcessed + 1
			if target < start {
				continue
			}

			if err := l.processRange(ctx, start, target); err != nil {
				ctx.WithField("err", err).Error("processRange failed")
				return err
			}

			l.state.LastBlockProcessed = target
			if err := l.q.Upsert(ctx, domain.TableBridgeStates, l.state.ToId(), l.state); err != nil {
				ctx.WithField("err", err).Error("failed to store bridge state")
				return err
			}
			met.BumpAvg("bridge.lastBlock", float64(target), "chainId", fmt.Sprint(l.chainId))
		}
	}
}

func (l *TransferListener) setupState(ctx bCtx.Ctx) (*domain.BridgeState, error) {
	id := &domain.BridgeStateId{ChainId: l.chainId, Market: l.market}
	state := &domain.BridgeState{}
	err := l.q.FindOne(ctx, domain.TableBridgeStates, id, state)
	if err == nil {
		return state, nil
	}
	if err != query.ErrNotFound {
		return nil, err
	}

	// fresh cursor starts at the chain head; deposits made before the
	// listener existed are not replayed
	current, err := l.chainClient.BlockNumber(ctx, l.chainId)
	if err != nil {
		return nil, err
	}
	state = &domain.BridgeState{
		ChainId:            l.chainId,
		Market:             l.market,
		LastBlockProcessed: current,
	}
	if err := l.q.Upsert(ctx, domain.TableBridgeStates, state.ToId(), state); err != nil {
		return nil, err
	}
	return state, nil
}

func (l *TransferListener) processRange(ctx bCtx.Ctx, start, end uint64) error {
	filter := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(start),
		ToBlock:   new(big.Int).SetUint64(end),
		Topics: [][]common.Hash{
			{transferSig},
			nil,
			{addressTopic(l.market)},
		},
	}
	logs, err := l.chainClient.FilterLogs(ctx, l.chainId, filter)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"start": start,
			"end":   end,
		}).Error("chainClient.FilterLogs failed")
		return err
	}
	for i := range logs {
		if err := l.processLog(ctx, &logs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (l *TransferListener) processLog(ctx bCtx.Ctx, lg *types.Log) error {
	if len(lg.Topics) != transferTopicCount {
		return nil
	}
	collection := domain.Address(strings.ToLower(lg.Address.Hex()))
	from := topicAddress(lg.Topics[1])
	tokenId := domain.TokenId(new(big.Int).SetBytes(lg.Topics[3].Bytes()).String())

	tx, _, err := l.chainClient.TransactionByHash(ctx, l.chainId, lg.TxHash)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"tx":  lg.TxHash.Hex(),
		}).Error("chainClient.TransactionByHash failed")
		return err
	}
	sender, err := types.Sender(l.signer, tx)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"tx":  lg.TxHash.Hex(),
		}).Error("types.Sender failed")
		return err
	}
	operator := domain.Address(strings.ToLower(sender.Hex()))
	if operator.Equals(l.market) {
		// custody pull issued by the escrow account, already recorded by List
		return nil
	}

	if ok, err := l.registry.Supports721Interface(ctx, collection); err != nil || !ok {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Warn("transfer from a contract without the erc721 interface, skipping")
		return nil
	}
	owner, err := l.registry.OwnerOf(ctx, collection, tokenId)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"tokenId":    tokenId,
		}).Warn("registry.OwnerOf failed, skipping deposit")
		return nil
	}
	if !owner.Equals(l.market) {
		// the token moved on after this log; a later transfer supersedes it
		ctx.WithFields(log.Fields{
			"collection": collection,
			"tokenId":    tokenId,
			"owner":      owner,
		}).Warn("deposit no longer held by the escrow account, skipping")
		return nil
	}

	data := extractPayload(tx.Data())
	_, err = l.marketplace.OnTokenReceived(ctx, collection, operator, from, tokenId, data)
	if err == domain.ErrInvalidDataLength {
		ctx.WithFields(log.Fields{
			"collection": collection,
			"tokenId":    tokenId,
			"dataLen":    len(data),
		}).Warn("deposit carries a malformed payload, token held without listing")
		return nil
	}
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"tokenId":    tokenId,
		}).Error("marketplace.OnTokenReceived failed")
		return err
	}
	met.BumpSum("deposit.sum", 1, "chainId", fmt.Sprint(l.chainId))
	return nil
}

// extractPayload pulls the data argument out of safeTransferFrom calldata.
// Transfers made by any other method carry no listing payload.
func extractPayload(calldata []byte) []byte {
	if len(calldata) < 4 {
		return nil
	}
	method, err := abi.ERC721TokenABI.MethodById(calldata[:4])
	if err != nil || method.RawName != "safeTransferFrom" || len(method.Inputs) != 4 {
		return nil
	}
	args, err := method.Inputs.Unpack(calldata[4:])
	if err != nil {
		return nil
	}
	data, ok := args[3].([]byte)
	if !ok {
		return nil
	}
	return data
}

func addressTopic(a domain.Address) common.Hash {
	return common.BytesToHash(common.HexToAddress(string(a)).Bytes())
}

func topicAddress(h common.Hash) domain.Address {
	return domain.Address(strings.ToLower(common.BytesToAddress(h.Bytes()).Hex()))
}
