package marketplace

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/domain"
)

type EventType string

const (
	EventTypeListed    EventType = "listed"
	EventTypeSold      EventType = "sold"
	EventTypeWithdrawn EventType = "withdrawn"
)

// Event is one observable marketplace fact. Events are append-only and are
// never consumed by the marketplace itself.
type Event struct {
	EventId    string         `json:"eventId" bson:"eventId"`
	Type       EventType      `json:"type" bson:"type"`
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
	Seller     domain.Address `json:"seller" bson:"seller"`
	Buyer      domain.Address `json:"buyer,omitempty" bson:"buyer,omitempty"`
	// Price is in wei, decimal string. Sold events carry the listed price,
	// not the amount the buyer offered.
	Price        string    `json:"price,omitempty" bson:"price,omitempty"`
	DisplayPrice string    `json:"displayPrice,omitempty" bson:"displayPrice,omitempty"`
	Time         time.Time `json:"time" bson:"time"`
}

// ToDisplayPrice renders a wei amount in whole native units for observers.
func ToDisplayPrice(wei *big.Int) string {
	return decimal.NewFromBigInt(wei, -18).String()
}

type EventFindAllOptions struct {
	Type       *EventType
	Collection *domain.Address
	TokenId    *domain.TokenId
	Offset     *int32
	Limit      *int32
}

type EventFindAllOptionsFunc func(*EventFindAllOptions) error

func GetEventFindAllOptions(opts ...EventFindAllOptionsFunc) (EventFindAllOptions, error) {
	res := EventFindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func EventWithType(t EventType) EventFindAllOptionsFunc {
	return func(options *EventFindAllOptions) error {
		options.Type = &t
		return nil
	}
}

func EventWithCollection(collection domain.Address) EventFindAllOptionsFunc {
	return func(options *EventFindAllOptions) error {
		options.Collection = collection.ToLowerPtr()
		return nil
	}
}

func EventWithTokenId(tokenId domain.TokenId) EventFindAllOptionsFunc {
	return func(options *EventFindAllOptions) error {
		options.TokenId = &tokenId
		return nil
	}
}

func EventWithPagination(offset int32, limit int32) EventFindAllOptionsFunc {
	return func(options *EventFindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

// EventRepo appends and queries marketplace facts.
type EventRepo interface {
	Insert(c ctx.Ctx, event *Event) error
	FindAll(c ctx.Ctx, opts ...EventFindAllOptionsFunc) ([]*Event, error)
}
