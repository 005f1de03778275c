package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client wraps redis.UniversalClient so repositories depend on this package
// rather than on go-redis directly.
type Client interface {
	redis.UniversalClient
}

// Nil is returned by reads of missing keys
const Nil = redis.Nil

// Z is a sorted set member
type Z = redis.Z

// TxFailedErr is returned by Watch when a watched key changed before EXEC
const TxFailedErr = redis.TxFailedErr

// Tx is a transaction started by Watch
type Tx = redis.Tx

// Pipeliner queues commands for a pipeline or MULTI block
type Pipeliner = redis.Pipeliner
