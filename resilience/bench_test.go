package resilience

import (
	"context"
	"testing"
	"time"
)

// BenchmarkBreaker_Execute_Closed measures happy path execution.
func BenchmarkBreaker_Execute_Closed(b *testing.B) {
	br := NewBreaker(BreakerConfig{
		FailureThreshold: 100,
		ResetTimeout:     time.Minute,
	})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = br.Execute(ctx, func(ctx context.Context) error {
			return nil
		})
	}
}

// BenchmarkBreaker_Concurrent measures parallel execution.
func BenchmarkBreaker_Concurrent(b *testing.B) {
	br := NewBreaker(BreakerConfig{
		FailureThreshold: 1000,
		ResetTimeout:     time.Minute,
	})
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = br.Execute(ctx, func(ctx context.Context) error {
				return nil
			})
		}
	})
}

// BenchmarkBulkhead_Execute measures uncontended admission.
func BenchmarkBulkhead_Execute(b *testing.B) {
	bh := NewBulkhead(BulkheadConfig{MaxConcurrent: 100})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bh.Execute(ctx, func(ctx context.Context) error {
			return nil
		})
	}
}

// BenchmarkBulkhead_Concurrent measures contended admission.
func BenchmarkBulkhead_Concurrent(b *testing.B) {
	bh := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 8,
		MaxQueued:     1024,
		QueueTimeout:  time.Minute,
	})
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = bh.Execute(ctx, func(ctx context.Context) error {
				return nil
			})
		}
	})
}

// BenchmarkRetry_NoFailure measures the retry wrapper overhead.
func BenchmarkRetry_NoFailure(b *testing.B) {
	r := NewRetry(RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Execute(ctx, func(ctx context.Context) error {
			return nil
		})
	}
}

// BenchmarkPipeline_AllLayers measures the fully composed happy path.
func BenchmarkPipeline_AllLayers(b *testing.B) {
	p := NewPipeline("bench", func(ctx context.Context) (int, error) {
		return 1, nil
	},
		WithBreaker[int](BreakerConfig{FailureThreshold: 1000, ResetTimeout: time.Minute}),
		WithBulkhead[int](BulkheadConfig{MaxConcurrent: 100, MaxQueued: 100, QueueTimeout: time.Second}),
		WithRetry[int](RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond}),
		WithAttemptTimeout[int](time.Second),
	)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Execute(ctx)
	}
}

// BenchmarkPipeline_Metrics measures snapshot retrieval.
func BenchmarkPipeline_Metrics(b *testing.B) {
	p := NewPipeline("bench", func(ctx context.Context) (int, error) {
		return 1, nil
	})
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, _ = p.Execute(ctx)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.Metrics()
	}
}
