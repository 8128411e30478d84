package usecase

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/domain"
	mBank "github.com/x-xyz/escrowapi/domain/bank/mocks"
	"github.com/x-xyz/escrowapi/domain/marketplace"
	mMarketplace "github.com/x-xyz/escrowapi/domain/marketplace/mocks"
	"github.com/x-xyz/escrowapi/domain/registry"
	mRegistry "github.com/x-xyz/escrowapi/domain/registry/mocks"
)

var (
	market     = domain.Address("0x322813fd9a801c5507c9de605d63cea4f2ce6c44")
	collection = domain.Address("0xdcf0de6b17785a143d006e1515a6afd123cde8ba")
	seller     = domain.Address("0xce4468e7ce84aceb74363f4ea64e5a038176f369")
	buyer      = domain.Address("0xdf8650b0ca1260f7a2f4fdff9082aede554f65ad")
	operator   = domain.Address("0x1a01ecd2263a9d5b5967667e508ea22db478bc4b")
	tokenId    = domain.TokenId("1")

	oneEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	twoEther = new(big.Int).Mul(oneEther, big.NewInt(2))
)

type marketplaceSuite struct {
	suite.Suite

	listingRepo *mMarketplace.Repo
	eventRepo   *mMarketplace.EventRepo
	registry    *mRegistry.Registry
	bank        *mBank.Bank
	im          marketplace.UseCase
}

func TestMarketplaceSuite(t *testing.T) {
	suite.Run(t, new(marketplaceSuite))
}

func (s *marketplaceSuite) SetupTest() {
	s.listingRepo = &mMarketplace.Repo{}
	s.eventRepo = &mMarketplace.EventRepo{}
	s.registry = &mRegistry.Registry{}
	s.bank = &mBank.Bank{}
	s.im = New(&MarketplaceUseCaseCfg{
		ListingRepo: s.listingRepo,
		EventRepo:   s.eventRepo,
		Registry:    s.registry,
		Bank:        s.bank,
		Market:      market,
	})
}

func (s *marketplaceSuite) id() marketplace.ListingId {
	return marketplace.ListingId{Collection: collection, TokenId: tokenId}
}

func (s *marketplaceSuite) activeListing(price *big.Int) *marketplace.Listing {
	return &marketplace.Listing{
		Collection: collection,
		TokenId:    tokenId,
		Seller:     seller,
		Price:      price.String(),
		Active:     true,
	}
}

func (s *marketplaceSuite) expectEvent(t marketplace.EventType, price string) {
	s.eventRepo.On("Insert", mock.Anything, mock.MatchedBy(func(e *marketplace.Event) bool {
		return e.Type == t && e.Price == price && e.EventId != ""
	})).Return(nil).Once()
}

func (s *marketplaceSuite) TestListPullsCustodyThenRecords() {
	_ctx := ctx.Background()

	s.registry.On("TransferCustody", mock.Anything, collection, seller, market, tokenId).Return(nil).Once()
	s.listingRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(l *marketplace.Listing) bool {
		return l.Collection == collection && l.TokenId == tokenId &&
			l.Seller == seller && l.Price == oneEther.String() && l.Active
	})).Return(nil).Once()
	s.expectEvent(marketplace.EventTypeListed, oneEther.String())

	s.NoError(s.im.List(_ctx, collection, tokenId, seller, oneEther))

	s.registry.AssertExpectations(s.T())
	s.listingRepo.AssertExpectations(s.T())
	s.eventRepo.AssertExpectations(s.T())
}

func (s *marketplaceSuite) TestListPropagatesCustodyFailure() {
	_ctx := ctx.Background()
	transferErr := errors.New("caller is not owner nor approved")

	s.registry.On("TransferCustody", mock.Anything, collection, seller, market, tokenId).Return(transferErr).Once()

	s.Equal(transferErr, s.im.List(_ctx, collection, tokenId, seller, oneEther))

	s.listingRepo.AssertNotCalled(s.T(), "Upsert", mock.Anything, mock.Anything)
	s.eventRepo.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
}

// relisting a held key silently replaces the prior seller and price, no
// withdrawal required. questionable but faithful to the deployed behavior.
func (s *marketplaceSuite) TestRelistOverwrites() {
	_ctx := ctx.Background()

	s.registry.On("TransferCustody", mock.Anything, collection, mock.Anything, market, tokenId).Return(nil).Twice()
	s.listingRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(l *marketplace.Listing) bool {
		return l.Seller == seller && l.Price == oneEther.String()
	})).Return(nil).Once()
	s.listingRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(l *marketplace.Listing) bool {
		return l.Seller == buyer && l.Price == twoEther.String()
	})).Return(nil).Once()
	s.eventRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Twice()

	s.NoError(s.im.List(_ctx, collection, tokenId, seller, oneEther))
	s.NoError(s.im.List(_ctx, collection, tokenId, buyer, twoEther))

	s.listingRepo.AssertExpectations(s.T())
}

func (s *marketplaceSuite) TestBuyWithOverpaymentRefundsSurplus() {
	_ctx := ctx.Background()

	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(s.activeListing(oneEther), nil).Once()
	s.listingRepo.On("Remove", mock.Anything, s.id()).Return(nil).Once()
	s.bank.On("Send", mock.Anything, seller, oneEther).Return(nil).Once()
	s.bank.On("Send", mock.Anything, buyer, oneEther).Return(nil).Once()
	s.registry.On("TransferCustody", mock.Anything, collection, market, buyer, tokenId).Return(nil).Once()
	s.expectEvent(marketplace.EventTypeSold, oneEther.String())

	s.NoError(s.im.Buy(_ctx, collection, tokenId, buyer, twoEther))

	s.listingRepo.AssertExpectations(s.T())
	s.bank.AssertExpectations(s.T())
	s.registry.AssertExpectations(s.T())
	s.eventRepo.AssertExpectations(s.T())
}

func (s *marketplaceSuite) TestBuyExactAmountNoRefund() {
	_ctx := ctx.Background()

	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(s.activeListing(oneEther), nil).Once()
	s.listingRepo.On("Remove", mock.Anything, s.id()).Return(nil).Once()
	s.bank.On("Send", mock.Anything, seller, oneEther).Return(nil).Once()
	s.registry.On("TransferCustody", mock.Anything, collection, market, buyer, tokenId).Return(nil).Once()
	s.expectEvent(marketplace.EventTypeSold, oneEther.String())

	s.NoError(s.im.Buy(_ctx, collection, tokenId, buyer, oneEther))

	s.bank.AssertNumberOfCalls(s.T(), "Send", 1)
}

func (s *marketplaceSuite) TestBuyZeroPrice() {
	_ctx := ctx.Background()

	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(s.activeListing(big.NewInt(0)), nil).Once()
	s.listingRepo.On("Remove", mock.Anything, s.id()).Return(nil).Once()
	s.registry.On("TransferCustody", mock.Anything, collection, market, buyer, tokenId).Return(nil).Once()
	s.expectEvent(marketplace.EventTypeSold, "0")

	s.NoError(s.im.Buy(_ctx, collection, tokenId, buyer, big.NewInt(0)))

	// free listing with exact amount moves no funds at all
	s.bank.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything, mock.Anything)
}

func (s *marketplaceSuite) TestBuyZeroPriceRefundsEverything() {
	_ctx := ctx.Background()

	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(s.activeListing(big.NewInt(0)), nil).Once()
	s.listingRepo.On("Remove", mock.Anything, s.id()).Return(nil).Once()
	s.bank.On("Send", mock.Anything, buyer, big.NewInt(5)).Return(nil).Once()
	s.registry.On("TransferCustody", mock.Anything, collection, market, buyer, tokenId).Return(nil).Once()
	s.expectEvent(marketplace.EventTypeSold, "0")

	s.NoError(s.im.Buy(_ctx, collection, tokenId, buyer, big.NewInt(5)))

	s.bank.AssertExpectations(s.T())
}

func (s *marketplaceSuite) TestBuyUnlistedToken() {
	_ctx := ctx.Background()

	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(nil, domain.ErrNotFound).Once()

	s.Equal(domain.ErrNotListed, s.im.Buy(_ctx, collection, tokenId, buyer, oneEther))

	s.listingRepo.AssertNotCalled(s.T(), "Remove", mock.Anything, mock.Anything)
	s.bank.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything, mock.Anything)
	s.registry.AssertNotCalled(s.T(), "TransferCustody", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *marketplaceSuite) TestBuyInactiveListing() {
	_ctx := ctx.Background()

	inactive := s.activeListing(oneEther)
	inactive.Active = false
	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(inactive, nil).Once()

	s.Equal(domain.ErrNotListed, s.im.Buy(_ctx, collection, tokenId, buyer, oneEther))
}

func (s *marketplaceSuite) TestBuyBelowPrice() {
	_ctx := ctx.Background()

	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(s.activeListing(oneEther), nil).Once()

	half := new(big.Int).Div(oneEther, big.NewInt(2))
	s.Equal(domain.ErrInsufficientFunds, s.im.Buy(_ctx, collection, tokenId, buyer, half))

	s.listingRepo.AssertNotCalled(s.T(), "Remove", mock.Anything, mock.Anything)
	s.bank.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything, mock.Anything)
}

func (s *marketplaceSuite) TestBuyRemovesRecordBeforeSettlement() {
	_ctx := ctx.Background()
	sendErr := errors.New("undeliverable")

	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(s.activeListing(oneEther), nil).Once()
	s.listingRepo.On("Remove", mock.Anything, s.id()).Return(nil).Once()
	s.bank.On("Send", mock.Anything, seller, oneEther).Return(sendErr).Once()

	s.Equal(sendErr, s.im.Buy(_ctx, collection, tokenId, buyer, oneEther))

	// record already gone, custody untouched, no success claimed
	s.listingRepo.AssertExpectations(s.T())
	s.registry.AssertNotCalled(s.T(), "TransferCustody", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.eventRepo.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
}

func (s *marketplaceSuite) TestBuyStaleCachedRead() {
	_ctx := ctx.Background()

	// cache still serves the listing but the record is already gone
	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(s.activeListing(oneEther), nil).Once()
	s.listingRepo.On("Remove", mock.Anything, s.id()).Return(domain.ErrNotFound).Once()

	s.Equal(domain.ErrNotListed, s.im.Buy(_ctx, collection, tokenId, buyer, oneEther))

	s.bank.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything, mock.Anything)
	s.registry.AssertNotCalled(s.T(), "TransferCustody", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.eventRepo.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
}

func (s *marketplaceSuite) TestWithdrawReturnsToken() {
	_ctx := ctx.Background()

	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(s.activeListing(oneEther), nil).Once()
	s.listingRepo.On("Remove", mock.Anything, s.id()).Return(nil).Once()
	s.registry.On("TransferCustody", mock.Anything, collection, market, seller, tokenId).Return(nil).Once()
	s.eventRepo.On("Insert", mock.Anything, mock.MatchedBy(func(e *marketplace.Event) bool {
		return e.Type == marketplace.EventTypeWithdrawn && e.Seller == seller
	})).Return(nil).Once()

	s.NoError(s.im.Withdraw(_ctx, collection, tokenId, seller))

	s.listingRepo.AssertExpectations(s.T())
	s.registry.AssertExpectations(s.T())
	s.bank.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything, mock.Anything)
}

func (s *marketplaceSuite) TestWithdrawByNonSeller() {
	_ctx := ctx.Background()

	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(s.activeListing(oneEther), nil).Once()

	s.Equal(domain.ErrNotSeller, s.im.Withdraw(_ctx, collection, tokenId, buyer))

	s.listingRepo.AssertNotCalled(s.T(), "Remove", mock.Anything, mock.Anything)
	s.registry.AssertNotCalled(s.T(), "TransferCustody", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *marketplaceSuite) TestWithdrawNeverListedKey() {
	_ctx := ctx.Background()

	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(nil, domain.ErrNotFound).Once()

	s.Equal(domain.ErrNotSeller, s.im.Withdraw(_ctx, collection, tokenId, seller))
}

func (s *marketplaceSuite) TestWithdrawStaleCachedRead() {
	_ctx := ctx.Background()

	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(s.activeListing(oneEther), nil).Once()
	s.listingRepo.On("Remove", mock.Anything, s.id()).Return(domain.ErrNotFound).Once()

	s.Equal(domain.ErrNotSeller, s.im.Withdraw(_ctx, collection, tokenId, seller))

	s.registry.AssertNotCalled(s.T(), "TransferCustody", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.eventRepo.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
}

func (s *marketplaceSuite) TestOnTokenReceivedEmptyPayload() {
	_ctx := ctx.Background()

	ack, err := s.im.OnTokenReceived(_ctx, collection, operator, seller, tokenId, nil)

	s.NoError(err)
	s.Equal(registry.ReceiverAck, ack)
	s.listingRepo.AssertNotCalled(s.T(), "Upsert", mock.Anything, mock.Anything)
}

func (s *marketplaceSuite) TestOnTokenReceivedPricePayload() {
	_ctx := ctx.Background()

	s.listingRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(l *marketplace.Listing) bool {
		return l.Collection == collection && l.TokenId == tokenId &&
			l.Seller == seller && l.Price == oneEther.String() && l.Active
	})).Return(nil).Once()
	s.expectEvent(marketplace.EventTypeListed, oneEther.String())

	ack, err := s.im.OnTokenReceived(_ctx, collection, operator, seller, tokenId, marketplace.EncodePricePayload(oneEther))

	s.NoError(err)
	s.Equal(registry.ReceiverAck, ack)
	// custody already moved before the callback; no transfer may be issued
	s.registry.AssertNotCalled(s.T(), "TransferCustody", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.listingRepo.AssertExpectations(s.T())
}

func (s *marketplaceSuite) TestOnTokenReceivedBadPayloadLength() {
	_ctx := ctx.Background()

	ack, err := s.im.OnTokenReceived(_ctx, collection, operator, seller, tokenId, []byte{0x01, 0x02, 0x03})

	s.Equal(domain.ErrInvalidDataLength, err)
	s.Equal([4]byte{}, ack)
	s.listingRepo.AssertNotCalled(s.T(), "Upsert", mock.Anything, mock.Anything)
	s.eventRepo.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
}

func (s *marketplaceSuite) TestGetListingAbsentReadsBackZeroValued() {
	_ctx := ctx.Background()

	s.listingRepo.On("FindOne", mock.Anything, s.id()).Return(nil, domain.ErrNotFound).Once()

	listing, err := s.im.GetListing(_ctx, s.id())

	s.NoError(err)
	s.False(listing.Active)
	s.True(listing.Seller.IsEmpty())
	s.Equal("0", listing.Price)
}
