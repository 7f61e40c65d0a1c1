// Package redis connects the relay to a Redis server so backend
// services can inject notification frames through pub/sub.
//
// Connect retries with a configurable cadence and wraps failures in
// sentinel errors (ErrRedisNotReady, ErrFailedToParseRedisConnString)
// joined with the underlying cause. Healthcheck turns a client into a
// probe function for readiness endpoints.
//
//	cfg := redis.Config{ConnectionURL: "redis://localhost:6379/0"}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package redis
