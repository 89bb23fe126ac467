package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/outrigger-io/outrigger/resilience"
)

func ExampleNewBreaker() {
	cb := resilience.NewBreaker(resilience.BreakerConfig{
		FailureThreshold: 3,
		ResetTimeout:     time.Second,
	})

	ctx := context.Background()
	err := cb.Execute(ctx, func(ctx context.Context) error {
		// Simulated successful operation
		return nil
	})

	if err == nil {
		fmt.Println("Operation succeeded")
	}
	// Output:
	// Operation succeeded
}

func ExampleBreaker_State() {
	cb := resilience.NewBreaker(resilience.BreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
	})

	ctx := context.Background()
	fmt.Println("Initial state:", cb.State())

	simulatedErr := errors.New("service unavailable")
	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, func(ctx context.Context) error {
			return simulatedErr
		})
	}
	fmt.Println("After failures:", cb.State())

	cb.Reset()
	fmt.Println("After reset:", cb.State())
	// Output:
	// Initial state: closed
	// After failures: open
	// After reset: closed
}

func ExampleNewRetry() {
	r := resilience.NewRetry(resilience.RetryConfig{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
	})

	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient failure")
		}
		return nil
	})

	fmt.Println("err:", err)
	fmt.Println("attempts:", attempts)
	// Output:
	// err: <nil>
	// attempts: 2
}

func ExampleNewBulkhead() {
	bh := resilience.NewBulkhead(resilience.BulkheadConfig{
		MaxConcurrent: 2,
		MaxQueued:     4,
		QueueTimeout:  time.Second,
	})

	err := bh.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})

	fmt.Println("err:", err)
	fmt.Println("executed:", bh.Metrics().TotalExecuted)
	// Output:
	// err: <nil>
	// executed: 1
}

func ExampleNewPipeline() {
	lookupInventory := func(ctx context.Context) (int, error) {
		return 12, nil
	}

	p := resilience.NewPipeline("inventory", lookupInventory,
		resilience.WithBreaker[int](resilience.BreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		}),
		resilience.WithRetry[int](resilience.RetryConfig{
			MaxRetries:   3,
			InitialDelay: 100 * time.Millisecond,
		}),
		resilience.WithAttemptTimeout[int](2*time.Second),
	)

	stock, err := p.Execute(context.Background())
	fmt.Println("stock:", stock, "err:", err)

	m := p.Metrics()
	fmt.Println("calls:", m.TotalCalls, "ok:", m.SuccessfulCalls)
	// Output:
	// stock: 12 err: <nil>
	// calls: 1 ok: 1
}

func ExampleWithFallback() {
	flaky := func(ctx context.Context) (string, error) {
		return "", errors.New("primary unavailable")
	}

	p := resilience.NewPipeline("quote", flaky,
		resilience.WithFallback[string](func(ctx context.Context, cause error) (string, error) {
			return "cached quote", nil
		}),
	)

	quote, err := p.Execute(context.Background())
	fmt.Println("quote:", quote, "err:", err)
	fmt.Println("failures recorded:", p.Metrics().FailedCalls)
	// Output:
	// quote: cached quote err: <nil>
	// failures recorded: 1
}

func ExampleNewCoalescer() {
	c := resilience.NewCoalescer[string]()

	v, shared, err := c.Do(context.Background(), "user:42", func(ctx context.Context) (string, error) {
		return "profile", nil
	})
	fmt.Println(v, shared, err)
	// Output:
	// profile false <nil>
}
