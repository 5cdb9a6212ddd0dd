package media

import "io"

// ProgressSink receives upload progress as a percentage in [0,100]. Values
// never decrease, and 100 is reported once, only after the host accepted
// the file. Nothing is reported after a failure.
type ProgressSink interface {
	Progress(percent int)
}

// ProgressFunc adapts a plain function to ProgressSink.
type ProgressFunc func(percent int)

func (f ProgressFunc) Progress(percent int) { f(percent) }

// tracker counts body bytes as the transport reads them. Intermediate
// reports are capped at 99 so the final 100 always means success.
type tracker struct {
	sink  ProgressSink
	total int64
	read  int64
	last  int
}

func newTracker(sink ProgressSink, total int64) *tracker {
	return &tracker{sink: sink, total: total, last: -1}
}

func (t *tracker) wrap(r io.Reader) io.Reader {
	if t.sink == nil {
		return r
	}
	return &trackingReader{r: r, t: t}
}

func (t *tracker) add(n int) {
	if t.sink == nil || t.total <= 0 || n <= 0 {
		return
	}
	t.read += int64(n)
	pct := int(t.read * 100 / t.total)
	if pct > 99 {
		pct = 99
	}
	t.emit(pct)
}

func (t *tracker) finish() {
	if t.sink == nil {
		return
	}
	t.emit(100)
}

func (t *tracker) emit(pct int) {
	if pct <= t.last {
		return
	}
	t.last = pct
	t.sink.Progress(pct)
}

type trackingReader struct {
	r io.Reader
	t *tracker
}

func (tr *trackingReader) Read(p []byte) (int, error) {
	n, err := tr.r.Read(p)
	tr.t.add(n)
	return n, err
}
