package source_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/okian/soltify/internal/domain/source"
	. "github.com/smartystreets/goconvey/convey"
)

func pagesOf(pages ...[]int) (source.Fetcher[int], *[]string) {
	var cursors []string
	fetch := func(_ context.Context, cursor string) (source.Page[int], error) {
		cursors = append(cursors, cursor)
		i := 0
		if cursor != "" {
			i, _ = strconv.Atoi(cursor)
		}
		return source.Page[int]{
			Items: pages[i],
			Next:  strconv.Itoa(i + 1),
			More:  i+1 < len(pages),
		}, nil
	}
	return fetch, &cursors
}

func TestScan(t *testing.T) {
	Convey("Given a paginated source", t, func() {
		ctx := context.Background()

		Convey("When every item is accepted", func() {
			fetch, cursors := pagesOf([]int{1, 2}, []int{3}, []int{4, 5})
			var got []int
			err := source.Scan(ctx, fetch, func(v int) bool {
				got = append(got, v)
				return true
			})

			Convey("Then all pages are walked in order", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []int{1, 2, 3, 4, 5})
				So(*cursors, ShouldResemble, []string{"", "1", "2"})
			})
		})

		Convey("When the visitor stops early", func() {
			fetch, cursors := pagesOf([]int{1, 2}, []int{3, 4}, []int{5})
			var got []int
			err := source.Scan(ctx, fetch, func(v int) bool {
				if v == 3 {
					return false
				}
				got = append(got, v)
				return true
			})

			Convey("Then no further page is requested", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []int{1, 2})
				So(len(*cursors), ShouldEqual, 2)
			})
		})

		Convey("When a page fails", func() {
			boom := errors.New("boom")
			var fetch source.Fetcher[int] = func(_ context.Context, _ string) (source.Page[int], error) {
				return source.Page[int]{}, boom
			}
			err := source.Scan(ctx, fetch, func(int) bool { return true })

			Convey("Then the error is returned", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})
	})
}
