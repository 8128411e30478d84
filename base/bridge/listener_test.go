package bridge

import (
	"crypto/ecdsa"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/escrowapi/base/abi"
	bCtx "github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/domain"
	"github.com/x-xyz/escrowapi/domain/marketplace"
	mMarketplace "github.com/x-xyz/escrowapi/domain/marketplace/mocks"
	"github.com/x-xyz/escrowapi/domain/registry"
	mRegistry "github.com/x-xyz/escrowapi/domain/registry/mocks"
	chainMocks "github.com/x-xyz/escrowapi/service/chain/mocks"
)

const testChainId = int32(1)

var (
	testCollection = common.HexToAddress("0xdcf0de6b17785a143d006e1515a6afd123cde8ba")
	testFrom       = common.HexToAddress("0xce4468e7ce84aceb74363f4ea64e5a038176f369")
	testTokenId    = big.NewInt(7)
)

func toDomainAddr(a common.Address) domain.Address {
	return domain.Address(strings.ToLower(a.Hex()))
}

func signedTransferTx(t *testing.T, key *ecdsa.PrivateKey, calldata []byte) *types.Transaction {
	t.Helper()
	tx := types.NewTransaction(0, testCollection, big.NewInt(0), 100000, big.NewInt(1), calldata)
	signer := types.LatestSignerForChainID(big.NewInt(int64(testChainId)))
	signed, err := types.SignTx(tx, signer, key)
	require.NoError(t, err)
	return signed
}

func transferLog(to common.Address, txHash common.Hash) types.Log {
	return types.Log{
		Address: testCollection,
		Topics: []common.Hash{
			transferSig,
			common.BytesToHash(testFrom.Bytes()),
			common.BytesToHash(to.Bytes()),
			common.BigToHash(testTokenId),
		},
		TxHash: txHash,
	}
}

func safeTransferCalldata(t *testing.T, to common.Address, payload []byte) []byte {
	t.Helper()
	// the 4-arg overload carries the listing payload
	data, err := abi.ERC721TokenABI.Pack("safeTransferFrom0", testFrom, to, testTokenId, payload)
	require.NoError(t, err)
	return data
}

func newTestListener(market domain.Address, chainClient *chainMocks.Client, reg *mRegistry.Registry, uc *mMarketplace.UseCase) *TransferListener {
	return NewTransferListener(&TransferListenerCfg{
		ChainId:     testChainId,
		Market:      market,
		ChainClient: chainClient,
		Registry:    reg,
		Marketplace: uc,
	})
}

func Test_extractPayload(t *testing.T) {
	req := require.New(t)
	key, err := crypto.GenerateKey()
	req.NoError(err)
	market := crypto.PubkeyToAddress(key.PublicKey)
	payload := marketplace.EncodePricePayload(big.NewInt(1000))

	withPayload := safeTransferCalldata(t, market, payload)
	req.Equal(payload, extractPayload(withPayload))

	plain, err := abi.ERC721TokenABI.Pack("safeTransferFrom", testFrom, market, testTokenId)
	req.NoError(err)
	req.Nil(extractPayload(plain))

	transferFrom, err := abi.ERC721TokenABI.Pack("transferFrom", testFrom, market, testTokenId)
	req.NoError(err)
	req.Nil(extractPayload(transferFrom))

	req.Nil(extractPayload(nil))
	req.Nil(extractPayload([]byte{0xde, 0xad, 0xbe, 0xef, 0x01}))
}

func TestTransferListener_processLog(t *testing.T) {
	depositorKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	depositor := crypto.PubkeyToAddress(depositorKey.PublicKey)
	marketKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	marketAddr := crypto.PubkeyToAddress(marketKey.PublicKey)
	market := toDomainAddr(marketAddr)
	collection := toDomainAddr(testCollection)
	tokenId := domain.TokenId(testTokenId.String())

	t.Run("deposit with price payload auto-lists", func(t *testing.T) {
		req := require.New(t)
		ctx := bCtx.Background()
		chainClient := new(chainMocks.Client)
		reg := new(mRegistry.Registry)
		uc := new(mMarketplace.UseCase)
		l := newTestListener(market, chainClient, reg, uc)

		payload := marketplace.EncodePricePayload(big.NewInt(1000))
		tx := signedTransferTx(t, depositorKey, safeTransferCalldata(t, marketAddr, payload))
		lg := transferLog(marketAddr, tx.Hash())

		chainClient.On("TransactionByHash", mock.Anything, testChainId, tx.Hash()).Return(tx, false, nil)
		reg.On("Supports721Interface", mock.Anything, collection).Return(true, nil)
		reg.On("OwnerOf", mock.Anything, collection, tokenId).Return(market, nil)
		uc.On("OnTokenReceived", mock.Anything, collection, toDomainAddr(depositor), toDomainAddr(testFrom), tokenId, payload).
			Return(registry.ReceiverAck, nil)

		req.NoError(l.processLog(ctx, &lg))
		uc.AssertExpectations(t)
	})

	t.Run("unsafe transfer lists nothing but is delivered", func(t *testing.T) {
		req := require.New(t)
		ctx := bCtx.Background()
		chainClient := new(chainMocks.Client)
		reg := new(mRegistry.Registry)
		uc := new(mMarketplace.UseCase)
		l := newTestListener(market, chainClient, reg, uc)

		calldata, err := abi.ERC721TokenABI.Pack("transferFrom", testFrom, marketAddr, testTokenId)
		req.NoError(err)
		tx := signedTransferTx(t, depositorKey, calldata)
		lg := transferLog(marketAddr, tx.Hash())

		chainClient.On("TransactionByHash", mock.Anything, testChainId, tx.Hash()).Return(tx, false, nil)
		reg.On("Supports721Interface", mock.Anything, collection).Return(true, nil)
		reg.On("OwnerOf", mock.Anything, collection, tokenId).Return(market, nil)
		uc.On("OnTokenReceived", mock.Anything, collection, toDomainAddr(depositor), toDomainAddr(testFrom), tokenId, []byte(nil)).
			Return(registry.ReceiverAck, nil)

		req.NoError(l.processLog(ctx, &lg))
		uc.AssertExpectations(t)
	})

	t.Run("custody pull by the escrow account is skipped", func(t *testing.T) {
		req := require.New(t)
		ctx := bCtx.Background()
		chainClient := new(chainMocks.Client)
		reg := new(mRegistry.Registry)
		uc := new(mMarketplace.UseCase)
		l := newTestListener(market, chainClient, reg, uc)

		calldata, err := abi.ERC721TokenABI.Pack("transferFrom", testFrom, marketAddr, testTokenId)
		req.NoError(err)
		tx := signedTransferTx(t, marketKey, calldata)
		lg := transferLog(marketAddr, tx.Hash())

		chainClient.On("TransactionByHash", mock.Anything, testChainId, tx.Hash()).Return(tx, false, nil)

		req.NoError(l.processLog(ctx, &lg))
		uc.AssertNotCalled(t, "OnTokenReceived", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("erc20 shaped log is skipped", func(t *testing.T) {
		req := require.New(t)
		ctx := bCtx.Background()
		chainClient := new(chainMocks.Client)
		reg := new(mRegistry.Registry)
		uc := new(mMarketplace.UseCase)
		l := newTestListener(market, chainClient, reg, uc)

		lg := types.Log{
			Address: testCollection,
			Topics: []common.Hash{
				transferSig,
				common.BytesToHash(testFrom.Bytes()),
				common.BytesToHash(marketAddr.Bytes()),
			},
		}

		req.NoError(l.processLog(ctx, &lg))
		chainClient.AssertNotCalled(t, "TransactionByHash", mock.Anything, mock.Anything, mock.Anything)
		uc.AssertNotCalled(t, "OnTokenReceived", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non erc721 contract is skipped", func(t *testing.T) {
		req := require.New(t)
		ctx := bCtx.Background()
		chainClient := new(chainMocks.Client)
		reg := new(mRegistry.Registry)
		uc := new(mMarketplace.UseCase)
		l := newTestListener(market, chainClient, reg, uc)

		payload := marketplace.EncodePricePayload(big.NewInt(1000))
		tx := signedTransferTx(t, depositorKey, safeTransferCalldata(t, marketAddr, payload))
		lg := transferLog(marketAddr, tx.Hash())

		chainClient.On("TransactionByHash", mock.Anything, testChainId, tx.Hash()).Return(tx, false, nil)
		reg.On("Supports721Interface", mock.Anything, collection).Return(false, nil)

		req.NoError(l.processLog(ctx, &lg))
		uc.AssertNotCalled(t, "OnTokenReceived", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("token moved on after the deposit", func(t *testing.T) {
		req := require.New(t)
		ctx := bCtx.Background()
		chainClient := new(chainMocks.Client)
		reg := new(mRegistry.Registry)
		uc := new(mMarketplace.UseCase)
		l := newTestListener(market, chainClient, reg, uc)

		payload := marketplace.EncodePricePayload(big.NewInt(1000))
		tx := signedTransferTx(t, depositorKey, safeTransferCalldata(t, marketAddr, payload))
		lg := transferLog(marketAddr, tx.Hash())

		chainClient.On("TransactionByHash", mock.Anything, testChainId, tx.Hash()).Return(tx, false, nil)
		reg.On("Supports721Interface", mock.Anything, collection).Return(true, nil)
		reg.On("OwnerOf", mock.Anything, collection, tokenId).Return(toDomainAddr(depositor), nil)

		req.NoError(l.processLog(ctx, &lg))
		uc.AssertNotCalled(t, "OnTokenReceived", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed payload holds the token without listing", func(t *testing.T) {
		req := require.New(t)
		ctx := bCtx.Background()
		chainClient := new(chainMocks.Client)
		reg := new(mRegistry.Registry)
		uc := new(mMarketplace.UseCase)
		l := newTestListener(market, chainClient, reg, uc)

		bad := []byte{0x01, 0x02, 0x03}
		tx := signedTransferTx(t, depositorKey, safeTransferCalldata(t, marketAddr, bad))
		lg := transferLog(marketAddr, tx.Hash())

		chainClient.On("TransactionByHash", mock.Anything, testChainId, tx.Hash()).Return(tx, false, nil)
		reg.On("Supports721Interface", mock.Anything, collection).Return(true, nil)
		reg.On("OwnerOf", mock.Anything, collection, tokenId).Return(market, nil)
		uc.On("OnTokenReceived", mock.Anything, collection, toDomainAddr(depositor), toDomainAddr(testFrom), tokenId, bad).
			Return([4]byte{}, domain.ErrInvalidDataLength)

		// the listener keeps going; the deposit stays held without a listing
		req.NoError(l.processLog(ctx, &lg))
		uc.AssertExpectations(t)
	})
}

func Test_addressTopic(t *testing.T) {
	req := require.New(t)
	addr := toDomainAddr(testCollection)
	req.Equal(addr, topicAddress(addressTopic(addr)))
}
