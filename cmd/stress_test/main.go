// Concurrency demonstration: fires many concurrent reservations at a
// single (center, package) key and verifies that exactly stock-many
// succeed and the counter lands on zero. This is the race the engine
// exists to prevent: two workers reading quantity 1 and both handing
// out a package.
package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/aid-distribution/internal/adapter/storage"
	"github.com/rl1809/aid-distribution/internal/core/domain"
	"github.com/rl1809/aid-distribution/internal/core/service"
)

const (
	redisAddr     = "localhost:6379"
	initialStock  = 20
	totalRequests = 50
	lockTimeout   = 5 * time.Second
)

func main() {
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	key := domain.InventoryKey{CenterID: 1, PackageID: 1}

	adapter := storage.NewRedisAdapter(rdb)
	if err := adapter.SetStock(ctx, key, initialStock); err != nil {
		logrus.Fatalf("failed to seed stock: %v", err)
	}

	ledger := service.NewLedger(adapter, lockTimeout)

	var successCount atomic.Int32
	var insufficientCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := ledger.Reserve(ctx, key, 1)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrInsufficientStock):
				insufficientCount.Add(1)
			default:
				logrus.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	insufficient := insufficientCount.Load()

	fmt.Println("========== CONCURRENCY TEST RESULTS ==========")
	fmt.Printf("Initial Stock:     %d\n", initialStock)
	fmt.Printf("Total Requests:    %d\n", totalRequests)
	fmt.Printf("Successful:        %d\n", success)
	fmt.Printf("Insufficient:      %d\n", insufficient)
	fmt.Printf("Duration:          %v\n", elapsed)
	fmt.Println("==============================================")

	if success == int32(initialStock) && insufficient == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: exactly %d reservations succeeded, %d rejected\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: expected %d success/%d rejected, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, insufficient)
	}

	finalStock, _, _ := adapter.GetStock(ctx, key)
	fmt.Printf("Final Stock: %d\n", finalStock)

	if finalStock == 0 {
		fmt.Println("PASS: stock depleted to exactly 0, never negative")
	} else {
		fmt.Printf("FAIL: expected stock 0, got %d\n", finalStock)
	}
}
