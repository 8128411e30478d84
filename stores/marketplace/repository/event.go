package repository

import (
	"github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/base/database/mongoclient"
	"github.com/x-xyz/escrowapi/base/log"
	"github.com/x-xyz/escrowapi/domain"
	"github.com/x-xyz/escrowapi/domain/marketplace"
	"github.com/x-xyz/escrowapi/service/query"
)

type eventFilter struct {
	Type       *marketplace.EventType `bson:"type,omitempty"`
	Collection *domain.Address        `bson:"collection,omitempty"`
	TokenId    *domain.TokenId        `bson:"tokenId,omitempty"`
}

type eventRepoImpl struct {
	q query.Mongo
}

// NewEventRepo creates the append-only marketplace fact store. Facts are
// only ever inserted and queried, never patched or removed.
func NewEventRepo(q query.Mongo) marketplace.EventRepo {
	return &eventRepoImpl{q}
}

func (im *eventRepoImpl) Insert(c ctx.Ctx, event *marketplace.Event) error {
	event.Collection = event.Collection.ToLower()
	event.Seller = event.Seller.ToLower()
	event.Buyer = event.Buyer.ToLower()
	if err := im.q.Insert(c, domain.TableMarketplaceEvents, event); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"event": event,
		}).Error("failed to q.Insert")
		return err
	}
	return nil
}

func (im *eventRepoImpl) FindAll(c ctx.Ctx, opts ...marketplace.EventFindAllOptionsFunc) ([]*marketplace.Event, error) {
	options, err := marketplace.GetEventFindAllOptions(opts...)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
		}).Error("GetEventFindAllOptions failed")
		return nil, err
	}

	qry, err := mongoclient.MakeBsonM(&eventFilter{
		Type:       options.Type,
		Collection: options.Collection,
		TokenId:    options.TokenId,
	})
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
		}).Error("MakeBsonM failed")
		return nil, err
	}

	offset := int32(0)
	limit := int32(0)
	if options.Offset != nil {
		offset = *options.Offset
	}
	if options.Limit != nil {
		limit = *options.Limit
	}

	res := []*marketplace.Event{}
	if err := im.q.Search(c, domain.TableMarketplaceEvents, int(offset), int(limit), "-time", qry, &res); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("failed to q.Search")
		return nil, err
	}

	return res, nil
}
