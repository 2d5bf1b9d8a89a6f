package redisgeneral

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis storage of JSON values. Each key expires on its own deadline.

func NewStorage(client *redis.Client, valueType reflect.Type) *Storage {
	if valueType == nil {
		panic("nil value type")
	}
	return &Storage{
		client:    client,
		valueType: valueType,
	}
}

type Storage struct {
	client    *redis.Client
	valueType reflect.Type
}

// Get returns a pointer to a fresh value of the storage type.
func (s *Storage) Get(ctx context.Context, key string) (interface{}, bool, error) {
	marshalledResult, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis error:%s", err.Error())
	}

	result, err := s.unmarshalJSON([]byte(marshalledResult))
	if err != nil {
		return nil, false, fmt.Errorf("incorrect json:%s", err.Error())
	}
	return result, true, nil
}

func (s *Storage) SetUntil(ctx context.Context, key string, value interface{}, deadline time.Time) error {
	if reflect.Indirect(reflect.ValueOf(value)).Type() != s.valueType {
		return fmt.Errorf("unexpected value type %T", value)
	}
	marshalled, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshalling failed: %s", err.Error())
	}

	ttl := time.Until(deadline)
	if deadline.IsZero() {
		ttl = 0
	} else if ttl <= 0 {
		return s.Delete(ctx, key)
	}
	if err := s.client.Set(ctx, key, marshalled, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %s", err.Error())
	}
	return nil
}

// Delete reports whether the key existed.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.DeleteExisting(ctx, key)
	return err
}

func (s *Storage) DeleteExisting(ctx context.Context, key string) (bool, error) {
	removed, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis failed delete: %s", err.Error())
	}
	return removed > 0, nil
}

func (s *Storage) unmarshalJSON(valueJSON []byte) (interface{}, error) {
	unmarshalled := reflect.New(s.valueType)
	err := json.Unmarshal(valueJSON, unmarshalled.Interface())
	if err != nil {
		return nil, fmt.Errorf("unmarshal json failed: %s", err.Error())
	}
	return unmarshalled.Interface(), nil
}
