// Package snapshot stores the serialized admin aggregate under a single key.
// Backends are interchangeable: the store only ever loads and saves whole
// snapshots, so the last writer for a key wins.
package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/imrishuroy/storefront-admin/internal/aws"
)

// ErrNotFound is returned by Load when no snapshot exists for the key.
var ErrNotFound = errors.New("snapshot not found")

// Backend persists opaque snapshot payloads.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

// Backend kinds accepted by New.
const (
	KindMemory   = "memory"
	KindFile     = "file"
	KindDynamoDB = "dynamodb"
	KindRedis    = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Kind      string
	Dir       string // file
	Table     string // dynamodb
	RedisAddr string // redis
}

// New builds the backend named by opts.Kind. dynamo may be nil unless the
// dynamodb kind is requested.
func New(opts Options, dynamo aws.DynamoDBAPI) (Backend, error) {
	switch opts.Kind {
	case "", KindMemory:
		return NewMemory(), nil
	case KindFile:
		return NewFile(opts.Dir)
	case KindDynamoDB:
		if dynamo == nil {
			return nil, fmt.Errorf("snapshot: dynamodb backend needs a client")
		}
		if opts.Table == "" {
			return nil, fmt.Errorf("snapshot: dynamodb backend needs a table name")
		}
		return NewDynamo(dynamo, opts.Table), nil
	case KindRedis:
		return NewRedis(redis.NewClient(&redis.Options{Addr: opts.RedisAddr})), nil
	default:
		return nil, fmt.Errorf("snapshot: unknown backend %q", opts.Kind)
	}
}
