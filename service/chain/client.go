package chain

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	bCtx "github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/base/log"
)

var ErrUnsupportedChain = errors.New("unsupported chain")

type ClientCfg struct {
	RpcUrls map[int32]string
	// SignerKey is the hex-encoded private key of the marketplace escrow
	// account. Leave empty for a read-only client.
	SignerKey string
}

type Client interface {
	Call(bCtx.Ctx, int32, common.Address, *big.Int, abi.ABI, string, ...interface{}) ([]interface{}, error)
	Transact(bCtx.Ctx, int32, common.Address, *big.Int, abi.ABI, string, ...interface{}) (common.Hash, error)
	SendValue(bCtx.Ctx, int32, common.Address, *big.Int) (common.Hash, error)
	BlockNumber(bCtx.Ctx, int32) (uint64, error)
	FilterLogs(bCtx.Ctx, int32, ethereum.FilterQuery) ([]types.Log, error)
	TransactionByHash(bCtx.Ctx, int32, common.Hash) (*types.Transaction, bool, error)
	Account() common.Address
}

type clientImpl struct {
	clients map[int32]*ethclient.Client
	key     *ecdsa.PrivateKey
	account common.Address
}

func NewClient(ctx bCtx.Ctx, cfg *ClientCfg) (Client, error) {
	var (
		anyerr error
	)
	clients := make(map[int32]*ethclient.Client)
	for chainId, url := range cfg.RpcUrls {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			anyerr = err
			ctx.WithFields(log.Fields{
				"err":     err,
				"chainId": chainId,
				"url":     url,
			}).Warn("failed to dial rpc")
			// soft warning, still let the server start
			continue
		}
		clients[chainId] = client
	}

	im := &clientImpl{clients: clients}
	if cfg.SignerKey != "" {
		key, err := crypto.HexToECDSA(cfg.SignerKey)
		if err != nil {
			return nil, err
		}
		im.key = key
		im.account = crypto.PubkeyToAddress(key.PublicKey)
	}
	return im, anyerr
}

func (c *clientImpl) Account() common.Address {
	return c.account
}

func (c *clientImpl) BlockNumber(ctx bCtx.Ctx, chainId int32) (uint64, error) {
	client, ok := c.clients[chainId]
	if !ok {
		return 0, ErrUnsupportedChain
	}
	return client.BlockNumber(ctx)
}

func (c *clientImpl) FilterLogs(ctx bCtx.Ctx, chainId int32, q ethereum.FilterQuery) ([]types.Log, error) {
	client, ok := c.clients[chainId]
	if !ok {
		return nil, ErrUnsupportedChain
	}
	logs, err := client.FilterLogs(ctx, q)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"from": q.FromBlock,
			"to":   q.ToBlock,
		}).Error("client.FilterLogs failed")
		return nil, err
	}
	return logs, nil
}

func (c *clientImpl) TransactionByHash(ctx bCtx.Ctx, chainId int32, hash common.Hash) (*types.Transaction, bool, error) {
	client, ok := c.clients[chainId]
	if !ok {
		return nil, false, ErrUnsupportedChain
	}
	tx, pending, err := client.TransactionByHash(ctx, hash)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"tx":  hash.Hex(),
		}).Error("client.TransactionByHash failed")
		return nil, false, err
	}
	return tx, pending, nil
}

func (c *clientImpl) Call(ctx bCtx.Ctx, chainId int32, addr common.Address, blk *big.Int, _abi abi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	client, ok := c.clients[chainId]
	if !ok {
		return nil, ErrUnsupportedChain
	}

	data, err := _abi.Pack(method, params...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"params": params,
			"err":    err,
		}).Error("abi.Pack failed")
		return nil, err
	}
	msg := ethereum.CallMsg{
		To:   &addr,
		Data: data,
	}
	res, err := client.CallContract(ctx, msg, blk)
	if err != nil {
		ctx.WithField("err", err).Error("client.CallContract failed")
		return nil, err
	}
	unpacked, err := _abi.Unpack(method, res)
	if err != nil {
		ctx.WithField("err", err).Error("abi.Unpack failed")
		return nil, err
	}
	return unpacked, nil
}

// Transact signs and submits a state-changing call from the escrow account.
func (c *clientImpl) Transact(ctx bCtx.Ctx, chainId int32, addr common.Address, value *big.Int, _abi abi.ABI, method string, params ...interface{}) (common.Hash, error) {
	data, err := _abi.Pack(method, params...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"params": params,
			"err":    err,
		}).Error("abi.Pack failed")
		return common.Hash{}, err
	}
	return c.submit(ctx, chainId, addr, value, data)
}

// SendValue moves native value from the escrow account, no calldata.
func (c *clientImpl) SendValue(ctx bCtx.Ctx, chainId int32, to common.Address, amount *big.Int) (common.Hash, error) {
	return c.submit(ctx, chainId, to, amount, nil)
}

func (c *clientImpl) submit(ctx bCtx.Ctx, chainId int32, to common.Address, value *big.Int, data []byte) (common.Hash, error) {
	if c.key == nil {
		return common.Hash{}, errors.New("client has no signer key")
	}
	client, ok := c.clients[chainId]
	if !ok {
		return common.Hash{}, ErrUnsupportedChain
	}

	nonce, err := client.PendingNonceAt(ctx, c.account)
	if err != nil {
		ctx.WithField("err", err).Error("client.PendingNonceAt failed")
		return common.Hash{}, err
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("client.SuggestGasPrice failed")
		return common.Hash{}, err
	}
	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:  c.account,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"to":  to,
		}).Error("client.EstimateGas failed")
		return common.Hash{}, err
	}

	tx := types.NewTransaction(nonce, to, value, gas, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(int64(chainId))), c.key)
	if err != nil {
		ctx.WithField("err", err).Error("types.SignTx failed")
		return common.Hash{}, err
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"tx":  signed.Hash(),
		}).Error("client.SendTransaction failed")
		return common.Hash{}, err
	}
	return signed.Hash(), nil
}
