package query_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pakafest/dashboard/internal/domain/model"
	"github.com/pakafest/dashboard/internal/domain/query"
)

func fixedClock() time.Time {
	return time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
}

func named(first, last, email, barcode string) model.Participant {
	return model.Participant{
		Owner:   model.Owner{FirstName: first, LastName: last, Email: email},
		Barcode: barcode,
	}
}

func withAnswers(p model.Participant, birth, postal string) model.Participant {
	if birth != "" {
		p.Answers = append(p.Answers, model.Answer{Label: "Date de naissance", Value: birth})
	}
	if postal != "" {
		p.Answers = append(p.Answers, model.Answer{Label: "Code postal", Value: postal})
	}
	return p
}

func TestParseSelection(t *testing.T) {
	Convey("Given the sentinel label Tous", t, func() {
		Convey("When parsing an empty value", func() {
			So(query.ParseSelection("", "Tous").Active(), ShouldBeFalse)
		})

		Convey("When parsing the sentinel itself", func() {
			So(query.ParseSelection("Tous", "Tous").Active(), ShouldBeFalse)
		})

		Convey("When parsing a real value", func() {
			sel := query.ParseSelection("69001", "Tous")
			So(sel.Active(), ShouldBeTrue)
			So(sel.Value(), ShouldEqual, "69001")
		})
	})
}

func TestFilterApply(t *testing.T) {
	Convey("Given a filter with a pinned clock and a small collection", t, func() {
		f := query.NewFilter(query.WithFilterClock(fixedClock))
		participants := []model.Participant{
			withAnswers(named("Marie", "Dupont", "marie@example.com", "AAA111"), "01/01/2000", "69001"),
			withAnswers(named("Jean", "Martin", "jean@example.com", "BBB222"), "01/01/1990", "75011"),
			withAnswers(named("Luc", "Durand", "luc@example.com", "CCC333"), "", "69001"),
		}

		Convey("When no filter is active", func() {
			out := f.Apply(participants, "", query.All(), query.All())

			Convey("Then every participant passes in input order", func() {
				So(out, ShouldHaveLength, 3)
				So(out[0].Owner.LastName, ShouldEqual, "Dupont")
				So(out[2].Owner.LastName, ShouldEqual, "Durand")
			})
		})

		Convey("When searching by last name", func() {
			out := f.Apply(participants, "dupont", query.All(), query.All())
			So(out, ShouldHaveLength, 1)
			So(out[0].Owner.LastName, ShouldEqual, "Dupont")
		})

		Convey("When the search term differs only in case", func() {
			out := f.Apply(participants, "DUPONT", query.All(), query.All())
			So(out, ShouldHaveLength, 1)
		})

		Convey("When the search term is surrounded by whitespace", func() {
			out := f.Apply(participants, "  dupont  ", query.All(), query.All())
			So(out, ShouldHaveLength, 1)
		})

		Convey("When searching by barcode", func() {
			out := f.Apply(participants, "bbb222", query.All(), query.All())
			So(out, ShouldHaveLength, 1)
			So(out[0].Owner.LastName, ShouldEqual, "Martin")
		})

		Convey("When searching by postal code", func() {
			out := f.Apply(participants, "69001", query.All(), query.All())
			So(out, ShouldHaveLength, 2)
		})

		Convey("When searching for something nobody matches", func() {
			out := f.Apply(participants, "introuvable", query.All(), query.All())
			So(out, ShouldBeEmpty)
		})

		Convey("When filtering by age range", func() {
			out := f.Apply(participants, "", query.Exact("18-25"), query.All())

			Convey("Then only computable ages inside the range pass", func() {
				So(out, ShouldHaveLength, 1)
				So(out[0].Owner.LastName, ShouldEqual, "Dupont")
			})
		})

		Convey("When filtering by an age range nobody has", func() {
			out := f.Apply(participants, "", query.Exact("66+"), query.All())
			So(out, ShouldBeEmpty)
		})

		Convey("When the age-range label is unknown", func() {
			out := f.Apply(participants, "", query.Exact("jamais-vu"), query.All())

			Convey("Then the filter is a no-op", func() {
				So(out, ShouldHaveLength, 3)
			})
		})

		Convey("When filtering by postal code", func() {
			out := f.Apply(participants, "", query.All(), query.Exact("69001"))
			So(out, ShouldHaveLength, 2)
		})

		Convey("When combining filters", func() {
			out := f.Apply(participants, "marie", query.Exact("18-25"), query.Exact("69001"))
			So(out, ShouldHaveLength, 1)
			So(out[0].Owner.FirstName, ShouldEqual, "Marie")

			Convey("And a mismatch on any predicate excludes", func() {
				out := f.Apply(participants, "marie", query.Exact("18-25"), query.Exact("75011"))
				So(out, ShouldBeEmpty)
			})
		})

		Convey("When the input slice is empty", func() {
			out := f.Apply(nil, "dupont", query.All(), query.All())
			So(out, ShouldBeEmpty)
		})
	})
}
