package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/soltify/internal/adapters/worker"
)

func TestMap(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		pool := worker.NewPool("test", worker.WithSize(3))
		ctx := context.Background()

		convey.Convey("When every task succeeds", func() {
			var running, peak int32
			items := []int{1, 2, 3, 4, 5, 6, 7, 8}
			out, err := worker.Map(ctx, pool, items, func(_ context.Context, n int) (string, error) {
				cur := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
						break
					}
				}
				time.Sleep(time.Duration(10-n) * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return fmt.Sprintf("item-%d", n), nil
			})

			convey.Convey("Then results keep the input order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldResemble, []string{"item-1", "item-2", "item-3", "item-4", "item-5", "item-6", "item-7", "item-8"})
			})

			convey.Convey("Then no more than the pool size run at once", func() {
				convey.So(atomic.LoadInt32(&peak), convey.ShouldBeLessThanOrEqualTo, 3)
			})
		})

		convey.Convey("When a task fails", func() {
			boom := errors.New("boom")
			var calls int32
			items := make([]int, 50)
			for i := range items {
				items[i] = i
			}
			out, err := worker.Map(ctx, pool, items, func(ctx context.Context, n int) (int, error) {
				atomic.AddInt32(&calls, 1)
				if n == 2 {
					return 0, boom
				}
				select {
				case <-ctx.Done():
					return 0, ctx.Err()
				case <-time.After(5 * time.Millisecond):
				}
				return n, nil
			})

			convey.Convey("Then the first error is returned and the rest is cut short", func() {
				convey.So(errors.Is(err, boom), convey.ShouldBeTrue)
				convey.So(out, convey.ShouldBeNil)
				convey.So(atomic.LoadInt32(&calls), convey.ShouldBeLessThan, 50)
			})
		})

		convey.Convey("When there is nothing to do", func() {
			out, err := worker.Map(ctx, pool, nil, func(_ context.Context, n int) (int, error) { return n, nil })

			convey.Convey("Then an empty result is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the context is already canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := worker.Map(cctx, pool, []int{1, 2}, func(ctx context.Context, n int) (int, error) {
				return n, ctx.Err()
			})

			convey.Convey("Then the cancellation is reported", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool built without options", t, func() {
		convey.So(worker.NewPool("default").Size(), convey.ShouldEqual, 4)
		convey.So(worker.NewPool("zero", worker.WithSize(0)).Size(), convey.ShouldEqual, 4)
	})
}
