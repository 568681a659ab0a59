package subscription

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	billing "github.com/dmitrymomot/resumekit/pkg/subscription"
)

// RedisLinker is a billing.CustomerLinker that keeps both directions of the
// user/customer association in Redis:
//
//	{prefix}:billing:user:{userID}         -> customerID
//	{prefix}:billing:customer:{customerID} -> userID
type RedisLinker struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ billing.CustomerLinker = (*RedisLinker)(nil)

// NewRedisLinker creates a linker. An empty prefix is allowed.
func NewRedisLinker(rdb redis.UniversalClient, prefix string) *RedisLinker {
	if rdb == nil {
		panic("subscription: nil redis client")
	}
	if prefix != "" {
		prefix += ":"
	}
	return &RedisLinker{rdb: rdb, prefix: prefix + "billing:"}
}

func (l *RedisLinker) userKey(userID string) string {
	return l.prefix + "user:" + userID
}

func (l *RedisLinker) customerKey(customerID string) string {
	return l.prefix + "customer:" + customerID
}

// LinkCustomer implements billing.CustomerLinker.
// Relinking a user to a new customer drops the reverse key of the old one;
// moving a customer to a new user drops the old user's forward key.
func (l *RedisLinker) LinkCustomer(ctx context.Context, userID, customerID string) (bool, error) {
	if userID == "" {
		return false, billing.ErrMissingUserID
	}
	if customerID == "" {
		return false, billing.ErrMissingCustomerID
	}

	owner, err := l.rdb.Get(ctx, l.customerKey(customerID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, errors.Join(ErrLinkFailed, err)
	}

	prev, err := l.rdb.SetArgs(ctx, l.userKey(userID), customerID, redis.SetArgs{Get: true}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, errors.Join(ErrLinkFailed, err)
	}

	pipe := l.rdb.TxPipeline()
	if prev != "" && prev != customerID {
		pipe.Del(ctx, l.customerKey(prev))
	}
	if owner != "" && owner != userID {
		pipe.Del(ctx, l.userKey(owner))
	}
	pipe.Set(ctx, l.customerKey(customerID), userID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, errors.Join(ErrLinkFailed, err)
	}

	return prev != customerID, nil
}

// CustomerID implements billing.CustomerLinker.
func (l *RedisLinker) CustomerID(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", billing.ErrMissingUserID
	}
	return l.get(ctx, l.userKey(userID))
}

// UserID implements billing.CustomerLinker.
func (l *RedisLinker) UserID(ctx context.Context, customerID string) (string, error) {
	if customerID == "" {
		return "", billing.ErrMissingCustomerID
	}
	return l.get(ctx, l.customerKey(customerID))
}

func (l *RedisLinker) get(ctx context.Context, key string) (string, error) {
	v, err := l.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", billing.ErrCustomerNotLinked
	}
	if err != nil {
		return "", errors.Join(ErrLinkFailed, err)
	}
	return v, nil
}
