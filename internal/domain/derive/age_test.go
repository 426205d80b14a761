package derive_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pakafest/dashboard/internal/domain/derive"
)

func TestAge(t *testing.T) {
	Convey("Given a reference date of 15 June 2024", t, func() {
		ref := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

		Convey("When the birthday has passed this year", func() {
			age, ok := derive.Age("01/01/2000", ref)
			So(ok, ShouldBeTrue)
			So(age, ShouldEqual, 24)
		})

		Convey("When the birthday has not arrived yet", func() {
			age, ok := derive.Age("31/12/2000", ref)
			So(ok, ShouldBeTrue)
			So(age, ShouldEqual, 23)
		})

		Convey("When the birthday is exactly today", func() {
			age, ok := derive.Age("15/06/2000", ref)
			So(ok, ShouldBeTrue)
			So(age, ShouldEqual, 24)
		})

		Convey("When the birthday is tomorrow", func() {
			age, ok := derive.Age("16/06/2000", ref)
			So(ok, ShouldBeTrue)
			So(age, ShouldEqual, 23)
		})

		Convey("When parts carry surrounding whitespace", func() {
			age, ok := derive.Age(" 01 / 01 / 2000 ", ref)
			So(ok, ShouldBeTrue)
			So(age, ShouldEqual, 24)
		})

		Convey("When the month is out of range", func() {
			// 01/13/2000 rolls over to January 2001.
			age, ok := derive.Age("01/13/2000", ref)
			So(ok, ShouldBeTrue)
			So(age, ShouldEqual, 23)
		})

		Convey("When the birth date is in the future", func() {
			_, ok := derive.Age("01/01/2030", ref)
			So(ok, ShouldBeFalse)
		})

		Convey("When the value is not three slash-separated parts", func() {
			for _, raw := range []string{"", "2000", "01/2000", "01/01/01/2000", "2000-01-01"} {
				_, ok := derive.Age(raw, ref)
				So(ok, ShouldBeFalse)
			}
		})

		Convey("When a part is not numeric", func() {
			for _, raw := range []string{"ab/01/2000", "01/xx/2000", "01/01/deux-mille"} {
				_, ok := derive.Age(raw, ref)
				So(ok, ShouldBeFalse)
			}
		})

		Convey("When a part carries trailing garbage", func() {
			// Whole-part parsing: "1990x" is a malformed year, not 1990.
			_, ok := derive.Age("01/01/1990x", ref)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestRanges(t *testing.T) {
	Convey("Given the default age-range table", t, func() {
		ranges := derive.DefaultRanges()

		Convey("Then the sentinel is the first entry", func() {
			So(ranges.Sentinel(), ShouldEqual, "Tous")
		})

		Convey("Then labels exclude the sentinel", func() {
			labels := ranges.Labels()
			So(labels, ShouldNotContain, "Tous")
			So(labels[0], ShouldEqual, "0-17")
			So(labels[len(labels)-1], ShouldEqual, "66+")
		})

		Convey("When bucketing representative ages", func() {
			cases := map[int]string{
				0:   "0-17",
				17:  "0-17",
				18:  "18-25",
				25:  "18-25",
				26:  "26-35",
				45:  "36-45",
				55:  "46-55",
				65:  "56-65",
				66:  "66+",
				120: "66+",
			}
			for age, want := range cases {
				label, ok := ranges.Bucket(age)
				So(ok, ShouldBeTrue)
				So(label, ShouldEqual, want)
			}
		})

		Convey("When the age falls outside every bucket", func() {
			_, ok := ranges.Bucket(121)
			So(ok, ShouldBeFalse)
		})

		Convey("When looking up a range by label", func() {
			r, ok := ranges.ByLabel("18-25")
			So(ok, ShouldBeTrue)
			So(r.Min, ShouldEqual, 18)
			So(r.Max, ShouldEqual, 25)

			_, ok = ranges.ByLabel("99-100")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given an empty table", t, func() {
		var ranges derive.Ranges

		Convey("Then the sentinel is empty and nothing buckets", func() {
			So(ranges.Sentinel(), ShouldEqual, "")
			_, ok := ranges.Bucket(30)
			So(ok, ShouldBeFalse)
			So(ranges.Labels(), ShouldBeEmpty)
		})
	})
}
