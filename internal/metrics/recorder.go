// Package metrics exposes render and build observability hooks. Components
// default to NoopRecorder; PrometheusRecorder is injected when a registry is
// available.
package metrics

import "time"

// RenderKind labels the render operation being observed.
type RenderKind string

const (
	KindPreview     RenderKind = "preview"
	KindPublishPage RenderKind = "publish-page"
	KindPublishSite RenderKind = "publish-site"
)

// Recorder receives render and build measurements. Implementations must be
// safe for concurrent use.
type Recorder interface {
	ObserveRender(kind RenderKind, d time.Duration, success bool)
	IncCoalesced(kind RenderKind)
	// AddWaiting moves the number of callers waiting on a render of kind.
	AddWaiting(kind RenderKind, delta int)
	ObserveBuild(d time.Duration, pages int, success bool)
}

// NoopRecorder discards every measurement.
type NoopRecorder struct{}

func (NoopRecorder) ObserveRender(RenderKind, time.Duration, bool) {}
func (NoopRecorder) IncCoalesced(RenderKind)                       {}
func (NoopRecorder) AddWaiting(RenderKind, int)                    {}
func (NoopRecorder) ObserveBuild(time.Duration, int, bool)         {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}
