// Command asyncoredemo exercises the future and dispatcher packages end to
// end: it submits a handful of tasks under different restrictions, combines
// their results, and drains the dispatcher on shutdown.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/amp-labs/asyncore/dispatcher"
	"github.com/amp-labs/asyncore/future"
	"github.com/amp-labs/asyncore/logger"
	"github.com/amp-labs/asyncore/shutdown"
)

func main() {
	ctx := shutdown.SetupHandler()

	log := logger.Get()

	if err := dispatcher.Default().AddCustomRestrictor("demo-db", 4); err != nil {
		log.Error("failed to register custom restrictor", "error", err)
		os.Exit(1)
	}

	sum := future.FlatMap(fetchUsers(ctx), func(users []string) *future.Future[int] {
		return countOrders(ctx, users)
	})

	total, err := sum.AwaitContext(ctx)
	if err != nil {
		log.Error("demo pipeline failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("total orders across %d users: %d\n", demoUserCount, total) //nolint:forbidigo

	intensive := dispatcher.Run(dispatcher.Default(), dispatcher.Intensive, "", renderThumbnail)

	result, err := intensive.Await()
	if err != nil {
		log.Error("thumbnail render failed", "error", err)
	} else {
		fmt.Println(result) //nolint:forbidigo
	}

	shutdown.Shutdown()
	<-ctx.Done()
}

const demoUserCount = 3

// fetchUsers simulates an I/O-bound lookup dispatched under the default
// (unrestricted) policy.
func fetchUsers(ctx context.Context) *future.Future[[]string] {
	return dispatcher.RunContext(dispatcher.Default(), ctx, dispatcher.None, "",
		func(ctx context.Context) ([]string, error) {
			select {
			case <-time.After(10 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}

			return []string{"alice", "bob", "carol"}, nil
		})
}

// countOrders fans out one lookup per user under a named Custom restrictor
// (capped to 4 concurrent lookups, simulating a connection-pool limit) and
// sums the results.
func countOrders(ctx context.Context, users []string) *future.Future[int] {
	futs := make([]*future.Future[int], len(users))

	for i, user := range users {
		user := user

		futs[i] = dispatcher.RunContext(dispatcher.Default(), ctx, dispatcher.Custom, "demo-db",
			func(ctx context.Context) (int, error) {
				select {
				case <-time.After(5 * time.Millisecond):
				case <-ctx.Done():
					return 0, ctx.Err()
				}

				return len(user), nil
			})
	}

	return future.Map(future.Combine(futs...), func(counts []int) (int, error) {
		total := 0
		for _, c := range counts {
			total += c
		}

		return total, nil
	})
}

// renderThumbnail simulates a CPU-bound task that should be scheduled under
// the Intensive restriction, which caps global concurrency at IntensiveCapacity.
func renderThumbnail() (string, error) {
	time.Sleep(5 * time.Millisecond)

	return "thumbnail rendered", nil
}
