package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/go-playground/validator/v10"
	"github.com/x-xyz/escrowapi/base/bridge"
	"github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/base/database/mongoclient"
	"github.com/x-xyz/escrowapi/base/database/redisclient"
	"github.com/x-xyz/escrowapi/base/log"
	"github.com/x-xyz/escrowapi/base/metrics"
	bValidator "github.com/x-xyz/escrowapi/base/validator"
	"github.com/x-xyz/escrowapi/domain"
	mmiddleware "github.com/x-xyz/escrowapi/middleware"
	"github.com/x-xyz/escrowapi/service/chain"
	"github.com/x-xyz/escrowapi/service/chain/contract"
	"github.com/x-xyz/escrowapi/service/query"
	"github.com/x-xyz/escrowapi/service/redis"
	hc_delivery "github.com/x-xyz/escrowapi/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/escrowapi/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/escrowapi/stores/healthcheck/usecase"
	marketplace_delivery "github.com/x-xyz/escrowapi/stores/marketplace/delivery/http"
	marketplace_repository "github.com/x-xyz/escrowapi/stores/marketplace/repository"
	marketplace_usecase "github.com/x-xyz/escrowapi/stores/marketplace/usecase"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex)

	// init redis cache, optional
	var redisCache redis.Service
	if redisCacheURI := viper.GetString("redis_cache.uri"); redisCacheURI != "" {
		context.Info("init redis cache")
		redisCacheName := viper.GetString("redis_cache.name")
		redisCachePwd := viper.GetString("redis_cache.password")
		redisCachePoolMultiplier := viper.GetFloat64("redis_cache.poolMultiplier")
		redisCachePool := redisclient.MustConnectRedis(redisCacheURI, redisCachePwd, redisclient.RedisParam{
			PoolMultiplier: redisCachePoolMultiplier,
			Retry:          true,
		})
		redisCache = redis.New(redisCacheName, metrics.New(redisCacheName), &redis.Pools{
			Src: redisCachePool,
		})
	}
	mmiddleware.SetupCache(redisCache)

	// init chain service with the escrow account signer
	chainId := int32(viper.GetInt("chain.chainId"))
	if chainId <= 0 {
		panic(domain.ErrInvalidChainId)
	}
	chainService, err := chain.NewClient(context, &chain.ClientCfg{
		RpcUrls:   map[int32]string{chainId: viper.GetString("chain.rpcUrl")},
		SignerKey: viper.GetString("chain.escrowKey"),
	})
	if err != nil {
		context.WithField("err", err).Warn("chainService started with error")
	}
	registryService := contract.NewErc721(chainService, chainId)
	bankService := contract.NewNativeBank(chainService, chainId)

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(mongoClient, redisCache, chainService, chainId)
	listingRepo := marketplace_repository.NewListingRepo(q, redisCache)
	eventRepo := marketplace_repository.NewEventRepo(q)

	hc := hc_usecase.New(hcRepo)
	marketplaceUC := marketplace_usecase.New(&marketplace_usecase.MarketplaceUseCaseCfg{
		ListingRepo: listingRepo,
		EventRepo:   eventRepo,
		Registry:    registryService,
		Bank:        bankService,
		Market:      domain.Address(chainService.Account().Hex()),
	})

	hc_delivery.New(e, hc)
	marketplace_delivery.New(e, marketplaceUC)

	// the bridge listener feeds on-chain deposits into the custody callback
	if viper.GetBool("bridge.enable") {
		context.Info("init bridge listener")
		listenerErrCh := make(chan error)
		listener := bridge.NewTransferListener(&bridge.TransferListenerCfg{
			ChainId:        chainId,
			Market:         domain.Address(chainService.Account().Hex()),
			Interval:       viper.GetDuration("bridge.interval"),
			FollowDistance: viper.GetUint64("bridge.followDistance"),
			Mongo:          q,
			ChainClient:    chainService,
			Registry:       registryService,
			Marketplace:    marketplaceUC,
			ErrorCh:        listenerErrCh,
		})
		listener.Start(context)
		go func() {
			for err := range listenerErrCh {
				context.WithField("err", err).Error("bridge listener stopped")
			}
		}()
	}

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
