package engine

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// The provider allows a fixed number of requests per hour per key.
// All outbound catalog calls share one limiter.
var limiter = rate.NewLimiter(rate.Inf, 1)

func initLimiter(perHour int) {
	if perHour <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 1)
		return
	}
	every := time.Hour / time.Duration(perHour)
	burst := perHour / 20
	if burst < 1 {
		burst = 1
	}
	limiter = rate.NewLimiter(rate.Every(every), burst)
}

// WaitQuota blocks until the shared provider limiter admits one request.
func WaitQuota(ctx context.Context) error {
	return limiter.Wait(ctx)
}
