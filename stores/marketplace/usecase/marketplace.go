package usecase

import (
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/base/log"
	"github.com/x-xyz/escrowapi/domain"
	"github.com/x-xyz/escrowapi/domain/bank"
	"github.com/x-xyz/escrowapi/domain/marketplace"
	"github.com/x-xyz/escrowapi/domain/registry"
)

type MarketplaceUseCaseCfg struct {
	ListingRepo marketplace.Repo
	EventRepo   marketplace.EventRepo
	Registry    registry.Registry
	Bank        bank.Bank
	// Market is the escrow account recorded as holder while a token is listed
	Market domain.Address
}

type impl struct {
	listingRepo marketplace.Repo
	eventRepo   marketplace.EventRepo
	registry    registry.Registry
	bank        bank.Bank
	market      domain.Address
	locks       sync.Map
}

func New(cfg *MarketplaceUseCaseCfg) marketplace.UseCase {
	return &impl{
		listingRepo: cfg.ListingRepo,
		eventRepo:   cfg.EventRepo,
		registry:    cfg.Registry,
		bank:        cfg.Bank,
		market:      cfg.Market.ToLower(),
	}
}

// lockId serializes operations touching the same escrow slot. Collaborator
// calls happen only after the ledger record for the key is in its final
// form, so the per-key lock is a guard against reentrant callbacks rather
// than a correctness requirement.
func (im *impl) lockId(id marketplace.ListingId) func() {
	v, _ := im.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (im *impl) List(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, seller domain.Address, price *big.Int) error {
	collection = collection.ToLower()
	seller = seller.ToLower()
	defer im.lockId(marketplace.ListingId{Collection: collection, TokenId: tokenId})()

	// custody must be acquired before the record is written. failures (caller
	// not owner, marketplace unapproved) surface unchanged.
	if err := im.registry.TransferCustody(c, collection, seller, im.market, tokenId); err != nil {
		c.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"tokenId":    tokenId,
			"seller":     seller,
		}).Error("registry.TransferCustody failed")
		return err
	}

	return im.createListing(c, collection, tokenId, seller, price)
}

// createListing is the single state transition behind both entry paths: the
// direct List call and the custody-bridge callback. It overwrites any prior
// record at the key without complaint.
func (im *impl) createListing(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, seller domain.Address, price *big.Int) error {
	listing := &marketplace.Listing{
		Collection: collection,
		TokenId:    tokenId,
		Seller:     seller,
		Price:      price.String(),
		Active:     true,
		ListedAt:   time.Now(),
	}
	if err := im.listingRepo.Upsert(c, listing); err != nil {
		c.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"tokenId":    tokenId,
		}).Error("listingRepo.Upsert failed")
		return err
	}

	return im.appendEvent(c, &marketplace.Event{
		Type:         marketplace.EventTypeListed,
		Collection:   collection,
		TokenId:      tokenId,
		Seller:       seller,
		Price:        price.String(),
		DisplayPrice: marketplace.ToDisplayPrice(price),
	})
}

func (im *impl) Buy(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, buyer domain.Address, amountOffered *big.Int) error {
	collection = collection.ToLower()
	buyer = buyer.ToLower()
	id := marketplace.ListingId{Collection: collection, TokenId: tokenId}
	defer im.lockId(id)()

	listing, err := im.listingRepo.FindOne(c, id)
	if err == domain.ErrNotFound {
		return domain.ErrNotListed
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("listingRepo.FindOne failed")
		return err
	}
	if !listing.Active {
		return domain.ErrNotListed
	}

	price, err := listing.PriceBig()
	if err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"id":    id,
			"price": listing.Price,
		}).Error("listing has malformed price")
		return err
	}
	if amountOffered.Cmp(price) < 0 {
		return domain.ErrInsufficientFunds
	}

	// the deletion is recorded before any value or custody movement so a
	// failure mid-settlement cannot leave the listing re-enterable.
	if err := im.listingRepo.Remove(c, id); err == domain.ErrNotFound {
		// the preceding read was served from cache; the record is already gone
		return domain.ErrNotListed
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("listingRepo.Remove failed")
		return err
	}

	if price.Sign() > 0 {
		if err := im.bank.Send(c, listing.Seller, price); err != nil {
			c.WithFields(log.Fields{
				"err":    err,
				"id":     id,
				"seller": listing.Seller,
			}).Error("bank.Send to seller failed")
			return err
		}
	}
	if surplus := new(big.Int).Sub(amountOffered, price); surplus.Sign() > 0 {
		if err := im.bank.Send(c, buyer, surplus); err != nil {
			c.WithFields(log.Fields{
				"err":   err,
				"id":    id,
				"buyer": buyer,
			}).Error("bank.Send refund failed")
			return err
		}
	}

	if err := im.registry.TransferCustody(c, collection, im.market, buyer, tokenId); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"id":    id,
			"buyer": buyer,
		}).Error("registry.TransferCustody to buyer failed")
		return err
	}

	// the fact carries the listed price, not the amount offered
	return im.appendEvent(c, &marketplace.Event{
		Type:         marketplace.EventTypeSold,
		Collection:   collection,
		TokenId:      tokenId,
		Seller:       listing.Seller,
		Buyer:        buyer,
		Price:        price.String(),
		DisplayPrice: marketplace.ToDisplayPrice(price),
	})
}

func (im *impl) Withdraw(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, caller domain.Address) error {
	collection = collection.ToLower()
	caller = caller.ToLower()
	id := marketplace.ListingId{Collection: collection, TokenId: tokenId}
	defer im.lockId(id)()

	listing, err := im.listingRepo.FindOne(c, id)
	if err == domain.ErrNotFound {
		// the zero record's seller can never equal a real caller
		return domain.ErrNotSeller
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("listingRepo.FindOne failed")
		return err
	}
	if listing.Seller.IsEmpty() || !listing.Seller.Equals(caller) {
		return domain.ErrNotSeller
	}

	if err := im.listingRepo.Remove(c, id); err == domain.ErrNotFound {
		// already removed under a stale cached read; same answer as the zero record
		return domain.ErrNotSeller
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("listingRepo.Remove failed")
		return err
	}

	if err := im.registry.TransferCustody(c, collection, im.market, listing.Seller, tokenId); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"id":     id,
			"seller": listing.Seller,
		}).Error("registry.TransferCustody to seller failed")
		return err
	}

	return im.appendEvent(c, &marketplace.Event{
		Type:       marketplace.EventTypeWithdrawn,
		Collection: collection,
		TokenId:    tokenId,
		Seller:     listing.Seller,
	})
}

func (im *impl) OnTokenReceived(c ctx.Ctx, collection domain.Address, operator domain.Address, from domain.Address, tokenId domain.TokenId, data []byte) ([4]byte, error) {
	// zero-length payload is a capability probe: acknowledge, list nothing
	if len(data) == 0 {
		return registry.ReceiverAck, nil
	}

	price, err := marketplace.DecodePricePayload(data)
	if err != nil {
		c.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"tokenId":    tokenId,
			"dataLen":    len(data),
		}).Warn("rejecting deposit with malformed payload")
		return [4]byte{}, err
	}

	// collection is the invoking registry, never payload-derived; seller is
	// the token's prior owner. custody already moved before this callback.
	collection = collection.ToLower()
	from = from.ToLower()
	defer im.lockId(marketplace.ListingId{Collection: collection, TokenId: tokenId})()

	if err := im.createListing(c, collection, tokenId, from, price); err != nil {
		return [4]byte{}, err
	}
	return registry.ReceiverAck, nil
}

func (im *impl) GetListing(c ctx.Ctx, id marketplace.ListingId) (*marketplace.Listing, error) {
	id = id.ToLower()
	listing, err := im.listingRepo.FindOne(c, id)
	if err == domain.ErrNotFound {
		// absent and removed records read back as the zero-valued, inactive listing
		return &marketplace.Listing{Collection: id.Collection, TokenId: id.TokenId, Price: "0"}, nil
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("listingRepo.FindOne failed")
		return nil, err
	}
	return listing, nil
}

func (im *impl) FindAll(c ctx.Ctx, opts ...marketplace.FindAllOptionsFunc) ([]*marketplace.Listing, error) {
	res, err := im.listingRepo.FindAll(c, opts...)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
		}).Error("listingRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Count(c ctx.Ctx, opts ...marketplace.FindAllOptionsFunc) (int, error) {
	cnt, err := im.listingRepo.Count(c, opts...)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
		}).Error("listingRepo.Count failed")
		return 0, err
	}
	return cnt, nil
}

func (im *impl) GetEvents(c ctx.Ctx, opts ...marketplace.EventFindAllOptionsFunc) ([]*marketplace.Event, error) {
	res, err := im.eventRepo.FindAll(c, opts...)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
		}).Error("eventRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) appendEvent(c ctx.Ctx, event *marketplace.Event) error {
	event.EventId = uuid.NewString()
	event.Time = time.Now()
	if err := im.eventRepo.Insert(c, event); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"type":    event.Type,
			"tokenId": event.TokenId,
		}).Error("eventRepo.Insert failed")
		return err
	}
	return nil
}
