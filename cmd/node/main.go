package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chain_chat/config"
	"chain_chat/internal/ledger"
	"chain_chat/internal/model"
	"chain_chat/internal/repository/eventlog"
	messageRepo "chain_chat/internal/repository/message"
	registryRepo "chain_chat/internal/repository/registry"
	redisSvc "chain_chat/internal/service/redis"
	"chain_chat/internal/service/server"
	"chain_chat/internal/utils/log"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadNode()
	if err != nil {
		log.Fatal("load config failed", zap.Error(err))
	}

	owner, err := model.ParseAccount(cfg.OwnerAccount)
	if err != nil {
		log.Fatal("invalid owner account", zap.Error(err))
	}

	mongoDBClient, err := initMongo(cfg.MongoURI)
	if err != nil {
		log.Fatal("connect mongo failed", zap.Error(err))
	}

	db := mongoDBClient.Database(cfg.MongoDatabase)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	events := eventlog.NewRedisLog(redisSvc.NewRedis(rdb))
	reg := registryRepo.NewMongoStore(db)
	msgs := messageRepo.NewMongoStore(db)

	l, err := ledger.New(context.Background(), ledger.Config{
		Owner:               owner,
		PermanentMessageFee: cfg.PermanentMessageFee,
	}, reg, msgs, events)
	if err != nil {
		log.Fatal("init ledger failed", zap.Error(err))
	}

	s := server.NewHttpServer(l)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		if err := s.Run(addr); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	<-done

	if err := mongoDBClient.Disconnect(context.Background()); err != nil {
		log.Error("mongo disconnect failed", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		log.Error("redis close failed", zap.Error(err))
	}
}

func initMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return client, client.Ping(ctx, nil)
}
