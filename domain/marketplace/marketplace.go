package marketplace

import (
	"math/big"
	"time"

	"github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/base/ptr"
	"github.com/x-xyz/escrowapi/domain"
)

// ListingId identifies one escrow slot. At most one listing exists per id.
type ListingId struct {
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
}

func (id ListingId) ToLower() ListingId {
	return ListingId{
		Collection: id.Collection.ToLower(),
		TokenId:    id.TokenId,
	}
}

// Listing is the escrow record authorizing a sale. The zero value doubles as
// "no listing": a removed record and a never-written record read back the same.
type Listing struct {
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
	Seller     domain.Address `json:"seller" bson:"seller"`
	// Price is in wei, decimal string. Zero is a valid, explicit price.
	Price    string    `json:"price" bson:"price"`
	Active   bool      `json:"active" bson:"active"`
	ListedAt time.Time `json:"listedAt" bson:"listedAt"`
}

func (l *Listing) ToId() ListingId {
	return ListingId{Collection: l.Collection, TokenId: l.TokenId}
}

func (l *Listing) PriceBig() (*big.Int, error) {
	p, ok := new(big.Int).SetString(l.Price, 10)
	if !ok {
		return nil, domain.ErrInvalidNumberFormat
	}
	return p, nil
}

type FindAllOptions struct {
	Collection *domain.Address
	Seller     *domain.Address
	Offset     *int32
	Limit      *int32
	SortBy     *string
	SortDir    *domain.SortDir
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func WithCollection(collection domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Collection = collection.ToLowerPtr()
		return nil
	}
}

func WithSeller(seller domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Seller = seller.ToLowerPtr()
		return nil
	}
}

func WithPagination(offset int32, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Offset = ptr.Int32(offset)
		options.Limit = ptr.Int32(limit)
		return nil
	}
}

func WithSort(sortBy string, sortDir domain.SortDir) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.SortBy = ptr.String(sortBy)
		options.SortDir = &sortDir
		return nil
	}
}

// Repo persists the listing ledger.
type Repo interface {
	// FindOne returns domain.ErrNotFound when no record exists at the id
	FindOne(c ctx.Ctx, id ListingId) (*Listing, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Listing, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	// Upsert writes the whole record, overwriting any prior one at the same id
	Upsert(c ctx.Ctx, listing *Listing) error
	Remove(c ctx.Ctx, id ListingId) error
}

// UseCase is the listing/custody/payment state machine.
type UseCase interface {
	// List pulls custody of the token from seller and records a listing.
	// Overwrites any prior listing at the same id.
	List(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, seller domain.Address, price *big.Int) error
	// Buy removes the listing, pays the seller the listed price, refunds any
	// surplus of amountOffered to buyer and releases custody to buyer.
	Buy(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, buyer domain.Address, amountOffered *big.Int) error
	// Withdraw reverses a deposit: caller must be the recorded seller.
	Withdraw(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, caller domain.Address) error
	// OnTokenReceived is the custody-bridge callback invoked by the registry
	// identified by collection after it transferred tokenId into escrow.
	// Empty data acknowledges without creating a listing; a 32-byte payload
	// is decoded as the price. Any ack other than registry.ReceiverAck, or a
	// non-nil error, means the transfer must be rejected by the caller.
	OnTokenReceived(c ctx.Ctx, collection domain.Address, operator domain.Address, from domain.Address, tokenId domain.TokenId, data []byte) ([4]byte, error)

	GetListing(c ctx.Ctx, id ListingId) (*Listing, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Listing, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	GetEvents(c ctx.Ctx, opts ...EventFindAllOptionsFunc) ([]*Event, error)
}
