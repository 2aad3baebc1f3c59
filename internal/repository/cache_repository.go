package repository

import (
	"upload-form-server/config"
	"upload-form-server/internal/model"
	"upload-form-server/internal/util"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type CacheRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewCacheRepository(rdb *config.RedisClient, ttl time.Duration) *CacheRepository {
	return &CacheRepository{rdb, ttl}
}

func (r *CacheRepository) SetForm(ctx context.Context, form *model.Form) error {
	data, err := json.Marshal(form)
	if err != nil {
		return util.LogError("ошибка сериализации формы", err)
	}

	cmd := r.client.Client.Set(ctx, r.key(form.UUID), data, r.ttl)
	if err = cmd.Err(); err != nil {
		return util.LogError("ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

func (r *CacheRepository) GetForm(ctx context.Context, uuid string) (*model.Form, error) {
	val, err := r.client.Client.Get(ctx, r.key(uuid)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // нет в кэше
	} else if err != nil {
		return nil, util.LogError("ошибка получения формы из Redis", err)
	}

	var form model.Form
	if err := json.Unmarshal([]byte(val), &form); err != nil {
		return nil, util.LogError("ошибка десериализации формы из кэша", err)
	}
	return &form, nil
}

func (r *CacheRepository) DeleteForm(ctx context.Context, uuid string) error {
	if err := r.client.Client.Del(ctx, r.key(uuid)).Err(); err != nil {
		return util.LogError("ошибка удаления формы из Redis", err)
	}
	return nil
}

func (r *CacheRepository) key(uuid string) string {
	return fmt.Sprintf("form:%s", uuid)
}
