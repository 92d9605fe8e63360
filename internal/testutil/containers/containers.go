//go:build integration

// Package containers starts throwaway service containers for integration
// tests. It is compiled only with the "integration" build tag so unit
// test builds never pull in Docker dependencies:
//
//	//go:build integration
//
// [StartRedis] backs the event journal and Redis client suites:
//
//	result, err := containers.StartRedis(ctx)
//	if err != nil { ... }
//	defer result.Container.Terminate(ctx)
package containers

import (
	"context"
	"fmt"

	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// DefaultRedisImage is the Redis image used by [StartRedis].
const DefaultRedisImage = "docker.io/redis:7-alpine"

// RedisResult is a running Redis container and its redis:// connection
// string. The caller terminates the container.
type RedisResult struct {
	Container  *tcredis.RedisContainer
	ConnString string
}

// StartRedis starts an unauthenticated Redis container. If the connection
// string cannot be read the container is terminated before returning.
func StartRedis(ctx context.Context) (*RedisResult, error) {
	container, err := tcredis.Run(ctx, DefaultRedisImage)
	if err != nil {
		return nil, fmt.Errorf("containers: failed to start redis container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("containers: failed to get redis connection string: %w", err)
	}

	return &RedisResult{
		Container:  container,
		ConnString: connStr,
	}, nil
}
