package prompt_test

import (
	"bytes"
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/soltify/internal/adapters/prompt"
)

func TestAutoConfirmer(t *testing.T) {
	Convey("Given an auto confirmer that answers no", t, func() {
		c := &prompt.AutoConfirmer{}

		ok, err := c.Confirm(context.Background(), "Filter it out?")

		Convey("Then the fixed answer is returned and the question kept", func() {
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(c.Asked, ShouldResemble, []string{"Filter it out?"})
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := &prompt.AutoConfirmer{Answer: true}

		_, err := c.Confirm(ctx, "q")

		Convey("Then no answer is given", func() {
			So(err, ShouldEqual, context.Canceled)
			So(c.Asked, ShouldBeEmpty)
		})
	})
}

func TestPlainConsole(t *testing.T) {
	Convey("Given a plain console", t, func() {
		var buf bytes.Buffer
		c := prompt.NewPlainConsole(&buf)

		c.Stage("reading liked songs")
		c.Done("42 songs")
		c.Warn("no snapshot")
		c.Fail("upstream down")

		Convey("Then every stage is printed as a line", func() {
			out := buf.String()
			So(out, ShouldContainSubstring, "reading liked songs")
			So(out, ShouldContainSubstring, "42 songs")
			So(out, ShouldContainSubstring, "no snapshot")
			So(out, ShouldContainSubstring, "upstream down")
		})
	})

	Convey("Given a quiet console", t, func() {
		var buf bytes.Buffer
		_ = prompt.NewPlainConsole(&buf)
		c := prompt.NewConsole(true)

		c.Stage("hidden")
		c.Done("hidden")

		Convey("Then nothing is printed", func() {
			So(buf.String(), ShouldBeEmpty)
		})
	})
}
