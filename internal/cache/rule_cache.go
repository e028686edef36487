package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-engine/internal/domain"
	"github.com/spec-kit/escalation-engine/internal/engine"
)

const activeRulesKey = "escalation:rules:active"

// RuleCache is a read-through cache for the active rule set. Redis being
// unreachable is never an error: reads fall back to the inner store and the
// miss is logged at debug level. It implements engine.RuleStore.
type RuleCache struct {
	client *redis.Client
	inner  engine.RuleStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewRuleCache wraps the inner store.
func NewRuleCache(client *redis.Client, inner engine.RuleStore, ttl time.Duration, logger *zap.Logger) *RuleCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RuleCache{client: client, inner: inner, ttl: ttl, logger: logger}
}

// ListActiveRules serves from cache when possible, refreshing on miss.
func (c *RuleCache) ListActiveRules(ctx context.Context) ([]domain.EscalationRule, error) {
	if c.client != nil {
		raw, err := c.client.Get(ctx, activeRulesKey).Bytes()
		if err == nil {
			var rules []domain.EscalationRule
			if err := json.Unmarshal(raw, &rules); err == nil {
				return rules, nil
			}
			c.logger.Warn("corrupt rule cache entry, refreshing", zap.Error(err))
		} else if err != redis.Nil {
			c.logger.Debug("rule cache unavailable", zap.Error(err))
		}
	}

	rules, err := c.inner.ListActiveRules(ctx)
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		if raw, err := json.Marshal(rules); err == nil {
			if err := c.client.Set(ctx, activeRulesKey, raw, c.ttl).Err(); err != nil {
				c.logger.Debug("rule cache write failed", zap.Error(err))
			}
		}
	}
	return rules, nil
}

// Invalidate drops the cached rule set. Called after rule mutations.
func (c *RuleCache) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, activeRulesKey).Err(); err != nil {
		c.logger.Debug("rule cache invalidation failed", zap.Error(err))
	}
}
