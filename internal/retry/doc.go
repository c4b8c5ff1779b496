// Package retry — исполнитель одиночного удалённого вызова с повторами.
//
// Примитив-лист, на котором строятся все остальные компоненты:
// экспоненциальный backoff с jitter, потолок задержки, явная
// классификация ошибок Retryable/Terminal и жёсткий лимит попыток.
//
//	attempts, err := retry.Do(ctx, policy, catalog.Classify, func(ctx context.Context) error {
//		return client.RegisterReplica(ctx, rse, file)
//	})
//
// Вызов должен быть идемпотентным или безопасным для повтора.
package retry
