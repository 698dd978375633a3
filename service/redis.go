package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Ruben1877/360spyne/config"
	"github.com/Ruben1877/360spyne/model"
	"github.com/Ruben1877/360spyne/utils"
)

type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisService(cfg *config.RedisConfig) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisService{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetRenderResult 从缓存获取渲染结果
func (s *RedisService) GetRenderResult(ctx context.Context, key string) (*model.RenderResult, error) {
	data, err := s.client.Get(ctx, "render:"+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // 缓存未命中
		}
		return nil, err
	}

	var result model.RenderResult
	if err := json.Unmarshal(data, &result); err != nil {
		utils.Logger.Error("failed to unmarshal render result",
			zap.String("key", key), zap.Error(err))
		return nil, err
	}

	return &result, nil
}

// SetRenderResult 写入渲染结果到缓存
func (s *RedisService) SetRenderResult(ctx context.Context, key string, result *model.RenderResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, "render:"+key, data, s.ttl).Err()
}

func (s *RedisService) Close() error {
	return s.client.Close()
}
