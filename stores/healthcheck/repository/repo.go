package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/x-xyz/escrowapi/base/ctx"
	"github.com/x-xyz/escrowapi/base/database/mongoclient"
	hcdomain "github.com/x-xyz/escrowapi/domain/healthcheck"
	"github.com/x-xyz/escrowapi/domain/keys"
	"github.com/x-xyz/escrowapi/service/chain"
	"github.com/x-xyz/escrowapi/service/redis"
)

type impl struct {
	mgoClient   *mongoclient.Client
	redisCache  redis.Service
	chainClient chain.Client
	chainId     int32
}

// New creates new healthCheckUsecase object representation of HealthCheckUsecase interface
func New(
	mgoClient *mongoclient.Client,
	redisCache redis.Service,
	chainClient chain.Client,
	chainId int32,
) hcdomain.HealthCheckRepo {
	return &impl{
		mgoClient:   mgoClient,
		redisCache:  redisCache,
		chainClient: chainClient,
		chainId:     chainId,
	}
}

func (im *impl) PingDB(context ctx.Ctx) error {
	ctx, cancel := ctx.WithTimeout(context, 2*time.Second)
	defer cancel()
	if err := im.mgoClient.Ping(ctx, readpref.Primary()); err != nil {
		context.WithField("err", err).Error("ping mongo error")
		return err
	}

	if im.redisCache != nil {
		if err := im.redisCache.Set(ctx, keys.RedisKey(keys.PfxHealthCheck, "testset"), []byte("1"), 30*time.Second); err != nil {
			context.WithField("err", err).Error("test redis set failed")
			return err
		}
	}
	return nil
}

func (im *impl) PingChain(context ctx.Ctx) error {
	ctx, cancel := ctx.WithTimeout(context, 2*time.Second)
	defer cancel()
	if _, err := im.chainClient.BlockNumber(ctx, im.chainId); err != nil {
		context.WithField("err", err).Error("ping chain rpc error")
		return err
	}
	return nil
}
