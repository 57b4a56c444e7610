package counter

import (
	"context"
	"strconv"

	"github.com/imobipro/imobipro-api/internal/pkg/cache"
)

const webhookOutcomesKey = "webhook:counters:outcomes"

// AddWebhookOutcome increments the running counter for a reconciliation
// outcome ("provisioned", "not_approved", ...) in Redis. Best effort: a
// Redis hiccup never affects the webhook acknowledgment.
func AddWebhookOutcome(outcome string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookOutcomesKey, outcome, 1).Err()
}

// WebhookOutcomes returns the accumulated per-outcome delivery counts.
func WebhookOutcomes() (map[string]int64, error) {
	ctx := context.Background()
	data, err := cache.GetClient().HGetAll(ctx, webhookOutcomesKey).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(data))
	for outcome, raw := range data {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		out[outcome] = n
	}
	return out, nil
}
