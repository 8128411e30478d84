package http

import (
	"math/big"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/base/delivery"
	"github.com/x-xyz/escrowapi/base/metrics"
	"github.com/x-xyz/escrowapi/domain"
	"github.com/x-xyz/escrowapi/domain/marketplace"
	"github.com/x-xyz/escrowapi/middleware"
)

var met metrics.Service

type handler struct {
	marketplace marketplace.UseCase
}

// New registers the marketplace boundary operations. The custody-bridge
// callback is not routed here; it is invoked in-process by the registry
// adapter, not by HTTP clients.
func New(e *echo.Echo, marketplaceUC marketplace.UseCase) {
	met = metrics.New("marketplace")

	h := &handler{marketplaceUC}

	gs := e.Group("/listings")

	gs.GET("", h.findAll, middleware.CacheHttp(10*time.Second))

	gs.GET("/count", h.count)

	g := e.Group("/listing/:collection/:tokenId", middleware.IsValidAddress("collection"))

	g.GET("", h.getListing)

	g.POST("/list", h.list)

	g.POST("/buy", h.buy)

	g.DELETE("", h.withdraw)

	e.GET("/events", h.getEvents, middleware.CacheHttp(10*time.Second))
}

type findAllParams struct {
	Collection *domain.Address `query:"collection"`
	Seller     *domain.Address `query:"seller"`
	Offset     int32           `query:"offset"`
	Limit      int32           `query:"limit"`
}

func (h *handler) findAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &findAllParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	opts := []marketplace.FindAllOptionsFunc{}
	if p.Collection != nil {
		opts = append(opts, marketplace.WithCollection(*p.Collection))
	}
	if p.Seller != nil {
		opts = append(opts, marketplace.WithSeller(*p.Seller))
	}
	if p.Offset != 0 || p.Limit != 0 {
		opts = append(opts, marketplace.WithPagination(p.Offset, p.Limit))
	}

	res, err := h.marketplace.FindAll(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) count(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &findAllParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	opts := []marketplace.FindAllOptionsFunc{}
	if p.Collection != nil {
		opts = append(opts, marketplace.WithCollection(*p.Collection))
	}
	if p.Seller != nil {
		opts = append(opts, marketplace.WithSeller(*p.Seller))
	}

	cnt, err := h.marketplace.Count(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, cnt)
}

func (h *handler) getListing(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id := marketplace.ListingId{
		Collection: domain.Address(c.Param("collection")),
		TokenId:    domain.TokenId(c.Param("tokenId")),
	}

	res, err := h.marketplace.GetListing(ctx, id)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

type listPayload struct {
	Seller domain.Address `json:"seller" validate:"required"`
	// Price is in wei, decimal string. Zero is a valid price.
	Price string `json:"price" validate:"required"`
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	defer met.BumpTime("list.time").End()

	p := &listPayload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	price, ok := new(big.Int).SetString(p.Price, 10)
	if !ok || price.Sign() < 0 {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidNumberFormat)
	}

	err := h.marketplace.List(ctx, domain.Address(c.Param("collection")), domain.TokenId(c.Param("tokenId")), p.Seller, price)
	if err != nil {
		met.BumpSum("list.err", 1)
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

type buyPayload struct {
	Buyer domain.Address `json:"buyer" validate:"required"`
	// AmountOffered is in wei, decimal string; must cover the listed price
	AmountOffered string `json:"amountOffered" validate:"required"`
}

func (h *handler) buy(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	defer met.BumpTime("buy.time").End()

	p := &buyPayload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	amount, ok := new(big.Int).SetString(p.AmountOffered, 10)
	if !ok || amount.Sign() < 0 {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidNumberFormat)
	}

	err := h.marketplace.Buy(ctx, domain.Address(c.Param("collection")), domain.TokenId(c.Param("tokenId")), p.Buyer, amount)
	switch err {
	case nil:
		return delivery.MakeJsonResp(c, http.StatusOK, "ok")
	case domain.ErrNotListed:
		return delivery.MakeJsonResp(c, http.StatusNotFound, err)
	case domain.ErrInsufficientFunds:
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	default:
		met.BumpSum("buy.err", 1)
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
}

type withdrawPayload struct {
	Caller domain.Address `json:"caller" validate:"required"`
}

func (h *handler) withdraw(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	defer met.BumpTime("withdraw.time").End()

	p := &withdrawPayload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	err := h.marketplace.Withdraw(ctx, domain.Address(c.Param("collection")), domain.TokenId(c.Param("tokenId")), p.Caller)
	switch err {
	case nil:
		return delivery.MakeJsonResp(c, http.StatusOK, "ok")
	case domain.ErrNotSeller:
		return delivery.MakeJsonResp(c, http.StatusUnauthorized, err)
	default:
		met.BumpSum("withdraw.err", 1)
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
}

type eventsParams struct {
	Type       *marketplace.EventType `query:"type"`
	Collection *domain.Address        `query:"collection"`
	TokenId    *domain.TokenId        `query:"tokenId"`
	Offset     int32                  `query:"offset"`
	Limit      int32                  `query:"limit"`
}

func (h *handler) getEvents(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &eventsParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	opts := []marketplace.EventFindAllOptionsFunc{}
	if p.Type != nil {
		opts = append(opts, marketplace.EventWithType(*p.Type))
	}
	if p.Collection != nil {
		opts = append(opts, marketplace.EventWithCollection(*p.Collection))
	}
	if p.TokenId != nil {
		opts = append(opts, marketplace.EventWithTokenId(*p.TokenId))
	}
	if p.Offset != 0 || p.Limit != 0 {
		opts = append(opts, marketplace.EventWithPagination(p.Offset, p.Limit))
	}

	res, err := h.marketplace.GetEvents(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
