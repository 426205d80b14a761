package metrics

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh metrics manager", t, func() {
		manager := NewManager()

		Convey("Then it owns a private registry", func() {
			So(manager, ShouldNotBeNil)
			So(manager.registry, ShouldNotBeNil)
		})

		Convey("And creating a second one does not panic on duplicates", func() {
			So(func() { NewManager() }, ShouldNotPanic)
		})
	})
}

func TestDefaultManager(t *testing.T) {
	Convey("Given the package-level recorders", t, func() {
		Convey("When recording through every helper", func() {
			So(func() {
				RecordHTTPRequest("participants", "GET", "200")
				RecordHTTPRequestDuration("participants", "GET", 12.5)
				RecordRefresh(1500, false)
				RecordRefresh(3000, true)
				UpdateLastSyncTime(1718409600)
				RecordSnapshotSave(false)
				RecordSnapshotSave(true)
				UpdateParticipantCounts(100, 40, 80, 75)
				RecordGeoLookup()
				RecordGeoLookupError()
				RecordGeoCacheHit()
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("When gathering the registry", func() {
			RecordHTTPRequest("stats", "GET", "200")

			families, err := GetRegistry().Gather()

			Convey("Then the recorded metrics are registered", func() {
				So(err, ShouldBeNil)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["festidash_http_requests_total"], ShouldBeTrue)
				So(names["festidash_sync_refreshes_total"], ShouldBeTrue)
				So(names["festidash_geo_lookups_total"], ShouldBeTrue)
			})
		})
	})
}
