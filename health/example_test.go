package health_test

import (
	"context"
	"fmt"
	"time"

	"github.com/outrigger-io/outrigger/health"
	"github.com/outrigger-io/outrigger/resilience"
)

func ExampleRegistry() {
	reg := health.NewRegistry(health.RegistryConfig{Timeout: 2 * time.Second})

	_ = reg.Register(health.NewCheckerFunc("db", func(ctx context.Context) health.Result {
		return health.Healthy("reachable")
	}))

	results := reg.CheckAll(context.Background())
	fmt.Println(health.Overall(results))
	// Output: healthy
}

func ExampleBreakerChecker() {
	br := resilience.NewBreaker(resilience.BreakerConfig{
		FailureThreshold: 3,
		ResetTimeout:     30 * time.Second,
	})

	checker := health.BreakerChecker("payments", br)
	res := checker.Check(context.Background())
	fmt.Println(checker.Name(), res.Status)
	// Output: payments.breaker healthy
}
