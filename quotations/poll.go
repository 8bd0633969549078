package quotations

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/techcorp/partsquote/rest"
)

// Watch re-fetches the quotation list at a fixed interval and delivers each
// result to fn. The backend is the sole source of truth; a fetch failure is
// delivered as an empty single-page result alongside the error so the view
// can show its banner without losing the loop. Watch blocks until ctx is
// cancelled, which is also how a closing view tears the poll down.
func (s *Service) Watch(ctx context.Context, params ListParams, interval time.Duration, fn func(rest.Page[Quotation], error)) error {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		page, err := s.List(ctx, params)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fn(rest.EmptyPage[Quotation](params.Size), err)
			continue
		}
		fn(page, nil)
	}
}
