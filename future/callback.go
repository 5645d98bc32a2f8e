package future

import (
	"context"
	"runtime/debug"

	"github.com/amp-labs/asyncore/logger"
	"github.com/amp-labs/asyncore/utils"
)

// invokeCallback runs callback in its own goroutine so it can't block
// fulfill, recovering and logging any panic under kind (e.g. "OnSuccess").
func invokeCallback[T any](kind string, callback func(T), value T) {
	if callback == nil {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				if err := utils.GetPanicRecoveryError(r, debug.Stack()); err != nil {
					logger.Get().Error("panic encountered in future."+kind+" callback", "error", err)
				}
			}
		}()

		callback(value)
	}()
}

// invokeCallbackContext is invokeCallback for the context-aware callback
// variants. A nil ctx becomes context.Background(); the context handed to
// callback is canceled as soon as callback returns.
func invokeCallbackContext[T any](ctx context.Context, kind string, callback func(context.Context, T), value T) {
	if callback == nil {
		return
	}

	go func() {
		if ctx == nil {
			ctx = context.Background()
		}

		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				if err := utils.GetPanicRecoveryError(r, debug.Stack()); err != nil {
					logger.Get(cctx).Error("panic encountered in future."+kind+" callback", "error", err)
				}
			}
		}()

		callback(cctx, value)
	}()
}
