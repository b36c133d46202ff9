package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("radar"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"listener": "me"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors live on the given registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldEqual, registry)

				manager.graphCacheHits.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_radar_graph_cache_hits_total")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording taste profile metrics", func() {
			before := testutil.ToFloat64(globalManager.likedSongsProcessed)
			RecordLikedSongProcessed()
			RecordLikedSongProcessed()
			RecordLikedSongTooOld()
			UpdateProfileArtists(42)
			RecordGraphCacheHit()
			RecordGraphCacheMiss()

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.likedSongsProcessed), ShouldEqual, before+2)
				So(testutil.ToFloat64(globalManager.profileArtists), ShouldEqual, 42)
			})
		})

		Convey("When recording release pipeline metrics", func() {
			RecordReleaseCandidate("critic")
			RecordReleaseAdmitted("critic", "tier2")
			RecordReleaseRejected("duplicate")
			UpdateReleaseListSize("album", 7, 2)

			Convey("Then the labelled series exist", func() {
				So(testutil.ToFloat64(globalManager.releaseListSize.WithLabelValues("album", "active")), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.releaseListSize.WithLabelValues("album", "removed")), ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.releasesRejected.WithLabelValues("duplicate")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording collaborator and run metrics", func() {
			So(func() {
				RecordUpstreamRequest("spotify", "success", 120*time.Millisecond)
				RecordUpstreamRequest("aoty", "failure", 2*time.Second)
				UpdateCircuitBreakerState("spotify", 2)
				RecordRunCompleted(3*time.Second, time.Unix(1_700_000_000, 0))
				RecordRunFailure()
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.lastRunUnix), ShouldEqual, 1_700_000_000)
		})

		Convey("When recording worker pool metrics", func() {
			UpdateWorkerActive("releases", 3)
			RecordWorkerTask("releases", "ok", 40*time.Millisecond)

			Convey("Then the pool series exist", func() {
				So(testutil.ToFloat64(globalManager.workerActive.WithLabelValues("releases")), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.workerTasks.WithLabelValues("releases", "ok")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a textfile path", t, func() {
		path := filepath.Join(t.TempDir(), "radar.prom")
		RecordLikedSongProcessed()

		Convey("When the metrics are written", func() {
			err := WriteTextfile(path)

			Convey("Then the file holds the exposition format", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(strings.Contains(string(data), "soltify_radar_liked_songs_processed_total"), ShouldBeTrue)
			})
		})

		Convey("When the directory does not exist", func() {
			err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "radar.prom"))

			Convey("Then a wrapped error is returned", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ErrWriteTextfile), ShouldBeTrue)
			})
		})
	})
}
