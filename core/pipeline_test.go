package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/assertions/should"
	"github.com/smartystreets/gunit"
	"github.com/smartystreets/logging"

	"bitbucket.org/smartystreets/swapper/contracts"
)

func TestPipelineFixture(t *testing.T) {
	gunit.Run(new(PipelineFixture), t)
}

type PipelineFixture struct {
	*gunit.Fixture
	downloader *FakeDownloader
	verifier   *FakeVerifier
	stager     *FakeStager
	notifier   *FakeNotifier
	pipeline   *Pipeline
}

func (this *PipelineFixture) Setup() {
	this.downloader = &FakeDownloader{failures: make(map[string]error)}
	this.verifier = &FakeVerifier{failures: make(map[string]error)}
	this.stager = &FakeStager{}
	this.notifier = &FakeNotifier{}
	this.pipeline = NewPipeline(this.downloader, this.verifier, this.stager, this.notifier, "/app/update_temp_1")
	this.pipeline.logger = logging.Capture()
}

func (this *PipelineFixture) TestAllItemsPendingBeforeFirstDownload() {
	items := []contracts.Artifact{{URL: "https://x/a"}, {URL: "https://x/b"}}

	_, _ = this.pipeline.Process(context.Background(), items)

	this.So(this.notifier.statusLog[:3], should.Resemble, []string{"0:pending", "1:pending", "0:downloading"})
}

func (this *PipelineFixture) TestSuccessfulItemWithChecksumWalksEveryStatus() {
	items := []contracts.Artifact{{URL: "https://x/a.zip", Checksum: "abc"}}

	staged, failures := this.pipeline.Process(context.Background(), items)

	this.So(failures, should.BeNil)
	this.So(staged, should.HaveLength, 1)
	this.So(this.notifier.statuses(0), should.Resemble, []contracts.Status{
		contracts.StatusPending,
		contracts.StatusDownloading,
		contracts.StatusDownloading,
		contracts.StatusVerifying,
		contracts.StatusStaging,
		contracts.StatusDone,
	})
}

func (this *PipelineFixture) TestVerificationSkippedWithoutChecksum() {
	_, _ = this.pipeline.Process(context.Background(), []contracts.Artifact{{URL: "https://x/a"}})

	this.So(this.verifier.calls, should.Equal, 0)
	this.So(this.notifier.statuses(0), should.NotContain, contracts.StatusVerifying)
}

func (this *PipelineFixture) TestDownloadNamedWithRandomHexAndExtension() {
	_, _ = this.pipeline.Process(context.Background(), []contracts.Artifact{{URL: "https://x/a.zip"}})

	local := this.downloader.requests[0].LocalPath
	this.So(filepath.Dir(local), should.Equal, "/app/update_temp_1")
	this.So(filepath.Ext(local), should.Equal, ".zip")
	this.So(strings.TrimSuffix(filepath.Base(local), ".zip"), should.HaveLength, 32)
}

func (this *PipelineFixture) TestFailedDownloadDoesNotStopBatch() {
	this.downloader.failures["https://x/a"] = &contracts.DownloadError{URL: "https://x/a", Attempts: 4, Err: errors.New("timeout")}
	items := []contracts.Artifact{{URL: "https://x/a"}, {URL: "https://x/b"}}

	staged, failures := this.pipeline.Process(context.Background(), items)

	var download *contracts.DownloadError
	this.So(errors.As(failures, &download), should.BeTrue)
	this.So(staged, should.HaveLength, 1)
	this.So(this.notifier.lastStatus(0), should.Equal, contracts.StatusFailed)
	this.So(this.notifier.lastStatus(1), should.Equal, contracts.StatusDone)
	this.So(this.notifier.errors, should.HaveLength, 1)
	this.So(this.notifier.lastProgress(), should.Equal, 100)
}

func (this *PipelineFixture) TestVerificationFailureEndsInVerifyFailed() {
	this.verifier.failures["https://x/a"] = &contracts.IntegrityError{Name: "a"}

	staged, failures := this.pipeline.Process(context.Background(), []contracts.Artifact{{URL: "https://x/a", Checksum: "00"}})

	this.So(failures, should.NotBeNil)
	this.So(staged, should.BeEmpty)
	this.So(this.notifier.lastStatus(0), should.Equal, contracts.StatusVerifyFailed)
	this.So(this.stager.calls, should.Equal, 0)
}

func (this *PipelineFixture) TestStagingFailureEndsInFailed() {
	this.stager.err = &contracts.StagingError{Name: "a", Err: errors.New("corrupt")}

	_, failures := this.pipeline.Process(context.Background(), []contracts.Artifact{{URL: "https://x/a"}})

	var staging *contracts.StagingError
	this.So(errors.As(failures, &staging), should.BeTrue)
	this.So(this.notifier.lastStatus(0), should.Equal, contracts.StatusFailed)
}

func (this *PipelineFixture) TestSizeTextFollowsTransfer() {
	_, _ = this.pipeline.Process(context.Background(), []contracts.Artifact{{URL: "https://x/a"}})

	this.So(this.notifier.sizeTexts[len(this.notifier.sizeTexts)-1], should.Equal, "1 KB / 1 KB")
}

func (this *PipelineFixture) TestOverallProgressNonDecreasingAndComplete() {
	this.downloader.chunks = 4
	this.downloader.failures["https://x/b"] = errors.New("gone")
	items := []contracts.Artifact{{URL: "https://x/a"}, {URL: "https://x/b"}, {URL: "https://x/c"}}

	_, _ = this.pipeline.Process(context.Background(), items)

	previous := 0
	for _, percent := range this.notifier.progress {
		this.So(percent, should.BeGreaterThanOrEqualTo, previous)
		previous = percent
	}
	this.So(previous, should.Equal, 100)
}

func (this *PipelineFixture) TestRetriesSurfaceAsProgressDetail() {
	this.downloader.retries = 1

	_, _ = this.pipeline.Process(context.Background(), []contracts.Artifact{{Name: "Core", URL: "https://x/a"}})

	this.So(this.notifier.details, should.Contain, "retrying Core in 1s (attempt 1 failed): flaky")
}

/////////////////////////////////////////////////////////////

type FakeDownloader struct {
	requests []contracts.DownloadRequest
	failures map[string]error
	chunks   int
	retries  int
}

func (this *FakeDownloader) Download(_ context.Context, request contracts.DownloadRequest) error {
	this.requests = append(this.requests, request)
	for x := 0; x < this.retries; x++ {
		request.Retrying(x+1, errors.New("flaky"), time.Second)
	}
	if err := this.failures[request.RemoteAddress]; err != nil {
		return err
	}
	chunks := this.chunks
	if chunks < 1 {
		chunks = 1
	}
	for x := 1; x <= chunks; x++ {
		request.Report(int64(x*1024/chunks), 1024)
	}
	return nil
}

type FakeVerifier struct {
	failures map[string]error
	calls    int
}

func (this *FakeVerifier) Verify(item contracts.Artifact, _ string) error {
	this.calls++
	return this.failures[item.URL]
}

type FakeStager struct {
	err   error
	calls int
}

func (this *FakeStager) Stage(item contracts.Artifact, downloadPath string) ([]contracts.StagedFile, error) {
	this.calls++
	if this.err != nil {
		return nil, this.err
	}
	return []contracts.StagedFile{{Source: downloadPath, Target: "/app/" + item.FileName()}}, nil
}

type FakeNotifier struct {
	lock      sync.Mutex
	progress  []int
	details   []string
	statusLog []string
	items     map[int][]contracts.Status
	sizeTexts []string
	phases    []contracts.Phase
	errors    []string
	completed []bool
}

func (this *FakeNotifier) OverallProgress(percent int, detail string) {
	this.lock.Lock()
	defer this.lock.Unlock()
	this.progress = append(this.progress, percent)
	this.details = append(this.details, detail)
}
func (this *FakeNotifier) ItemStatus(index int, status contracts.Status, sizeText string) {
	this.lock.Lock()
	defer this.lock.Unlock()
	if this.items == nil {
		this.items = make(map[int][]contracts.Status)
	}
	this.items[index] = append(this.items[index], status)
	this.statusLog = append(this.statusLog, fmt.Sprintf("%d:%s", index, status))
	this.sizeTexts = append(this.sizeTexts, sizeText)
}
func (this *FakeNotifier) Phase(phase contracts.Phase) {
	this.lock.Lock()
	defer this.lock.Unlock()
	this.phases = append(this.phases, phase)
}
func (this *FakeNotifier) Error(message string) {
	this.lock.Lock()
	defer this.lock.Unlock()
	this.errors = append(this.errors, message)
}
func (this *FakeNotifier) Completed(success bool) {
	this.lock.Lock()
	defer this.lock.Unlock()
	this.completed = append(this.completed, success)
}

func (this *FakeNotifier) statuses(index int) []contracts.Status {
	this.lock.Lock()
	defer this.lock.Unlock()
	return this.items[index]
}
func (this *FakeNotifier) lastStatus(index int) contracts.Status {
	statuses := this.statuses(index)
	return statuses[len(statuses)-1]
}
func (this *FakeNotifier) lastProgress() int {
	this.lock.Lock()
	defer this.lock.Unlock()
	return this.progress[len(this.progress)-1]
}
