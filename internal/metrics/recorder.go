package metrics

// Recorder collects gallery observability hooks. NoopRecorder is used when
// metrics are disabled so callers never check for nil.
type Recorder interface {
	IncRequest(route string, status int)
	ObserveImages(mode string, count int)
	IncCache(hit bool)
	IncRefresh(changed bool)
}

type NoopRecorder struct{}

func (NoopRecorder) IncRequest(string, int)    {}
func (NoopRecorder) ObserveImages(string, int) {}
func (NoopRecorder) IncCache(bool)             {}
func (NoopRecorder) IncRefresh(bool)           {}
