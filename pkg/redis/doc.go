// Package redis connects to Redis with go-redis/v9.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Connect retries the initial ping; Healthcheck returns a probe suitable for
// readiness checks. Sentinel errors are joined with the driver error, so
// errors.Is works on both.
package redis
