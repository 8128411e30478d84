package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/base/log"
	"github.com/x-xyz/escrowapi/domain"
	"github.com/x-xyz/escrowapi/domain/keys"
	"github.com/x-xyz/escrowapi/domain/marketplace"
	"github.com/x-xyz/escrowapi/service/cache"
	"github.com/x-xyz/escrowapi/service/cache/provider"
	"github.com/x-xyz/escrowapi/service/cache/provider/compound"
	"github.com/x-xyz/escrowapi/service/cache/provider/primitive"
	redisCache "github.com/x-xyz/escrowapi/service/cache/provider/redis"
	"github.com/x-xyz/escrowapi/service/query"
	"github.com/x-xyz/escrowapi/service/redis"
)

type listingRepoImpl struct {
	q            query.Mongo
	listingCache cache.Service
}

// NewListingRepo creates the mongo-backed listing ledger. Reads of single
// records go through a small read cache which is dropped on every write to
// the same key, keeping ledger reads in lock-step with the stored record.
func NewListingRepo(q query.Mongo, redisSvc redis.Service) marketplace.Repo {
	cacheProviders := []provider.Provider{
		primitive.NewPrimitive(keys.PfxListing, 64),
	}

	if redisSvc != nil {
		cacheProviders = append(cacheProviders, redisCache.NewRedis(redisSvc))
	}

	return &listingRepoImpl{
		q: q,
		listingCache: cache.New(cache.ServiceConfig{
			Ttl:   time.Minute,
			Pfx:   keys.PfxListing,
			Cache: compound.NewCompound(cacheProviders),
		}),
	}
}

func cacheKey(id marketplace.ListingId) string {
	return keys.RedisKey(id.Collection.ToLowerStr(), id.TokenId.String())
}

func (im *listingRepoImpl) FindOne(c ctx.Ctx, id marketplace.ListingId) (*marketplace.Listing, error) {
	id = id.ToLower()
	res := &marketplace.Listing{}

	if err := im.listingCache.GetByFunc(c, cacheKey(id), res, func() (interface{}, error) {
		return im.findOne(c, id)
	}); err != nil {
		return nil, err
	}

	return res, nil
}

func (im *listingRepoImpl) findOne(c ctx.Ctx, id marketplace.ListingId) (*marketplace.Listing, error) {
	res := &marketplace.Listing{}
	err := im.q.FindOne(c, domain.TableListings, bson.M{"collection": id.Collection, "tokenId": id.TokenId}, res)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to q.FindOne")
		return nil, err
	}
	return res, nil
}

func (im *listingRepoImpl) makeQuery(opts ...marketplace.FindAllOptionsFunc) (bson.M, error) {
	options, err := marketplace.GetFindAllOptions(opts...)
	if err != nil {
		return nil, err
	}
	qry := bson.M{}

	if options.Collection != nil {
		qry["collection"] = *options.Collection
	}

	if options.Seller != nil {
		qry["seller"] = *options.Seller
	}

	return qry, nil
}

func (im *listingRepoImpl) FindAll(c ctx.Ctx, opts ...marketplace.FindAllOptionsFunc) ([]*marketplace.Listing, error) {
	qry, err := im.makeQuery(opts...)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
		}).Error("im.makeQuery failed")
		return nil, err
	}

	options, _ := marketplace.GetFindAllOptions(opts...)

	offset := int32(0)
	limit := int32(0)
	if options.Offset != nil {
		offset = *options.Offset
	}
	if options.Limit != nil {
		limit = *options.Limit
	}

	sort := "-listedAt"
	if options.SortBy != nil {
		sort = *options.SortBy
		if options.SortDir != nil && *options.SortDir == domain.SortDirDesc {
			sort = "-" + sort
		}
	}

	res := []*marketplace.Listing{}
	if err := im.q.Search(c, domain.TableListings, int(offset), int(limit), sort, qry, &res); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("failed to q.Search")
		return nil, err
	}

	return res, nil
}

func (im *listingRepoImpl) Count(c ctx.Ctx, opts ...marketplace.FindAllOptionsFunc) (int, error) {
	qry, err := im.makeQuery(opts...)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
		}).Error("im.makeQuery failed")
		return 0, err
	}

	cnt, err := im.q.Count(c, domain.TableListings, qry)
	if err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("failed to q.Count")
		return 0, err
	}

	return cnt, nil
}

func (im *listingRepoImpl) Upsert(c ctx.Ctx, listing *marketplace.Listing) error {
	listing.Collection = listing.Collection.ToLower()
	listing.Seller = listing.Seller.ToLower()
	selector := bson.M{"collection": listing.Collection, "tokenId": listing.TokenId}
	if err := im.q.Upsert(c, domain.TableListings, selector, listing); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"listing": listing,
		}).Error("failed to q.Upsert")
		return err
	}

	if err := im.listingCache.Del(c, cacheKey(listing.ToId())); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  listing.ToId(),
		}).Error("listingCache.Del failed")
	}
	return nil
}

func (im *listingRepoImpl) Remove(c ctx.Ctx, id marketplace.ListingId) error {
	id = id.ToLower()
	err := im.q.Remove(c, domain.TableListings, bson.M{"collection": id.Collection, "tokenId": id.TokenId})
	if err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to q.Remove")
		return err
	}

	if err := im.listingCache.Del(c, cacheKey(id)); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("listingCache.Del failed")
	}
	return nil
}
