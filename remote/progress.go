package remote

// progressCounter observes bytes on their way to disk and forwards the
// running total. Reports are thinned out to whole-percent steps (or every
// reportStep bytes when the total is unknown); Close always reports.
type progressCounter struct {
	written      int64
	total        int64
	lastReported int64
	onProgress   func(written, total int64)
}

const reportStep = 256 * 1024

func newProgressCounter(total int64, onProgress func(written, total int64)) *progressCounter {
	return &progressCounter{total: total, lastReported: -1, onProgress: onProgress}
}

func (this *progressCounter) Write(p []byte) (n int, err error) {
	n = len(p)
	this.written += int64(n)
	if this.due() {
		this.report()
	}
	return n, nil
}

func (this *progressCounter) Close() {
	if this.lastReported != this.written {
		this.report()
	}
}

func (this *progressCounter) due() bool {
	if this.lastReported < 0 {
		return true
	}
	if this.total > 0 {
		return this.written*100/this.total > this.lastReported*100/this.total
	}
	return this.written-this.lastReported >= reportStep
}

func (this *progressCounter) report() {
	this.lastReported = this.written
	this.onProgress(this.written, this.total)
}
