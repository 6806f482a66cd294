package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/assertions/should"
	"github.com/smartystreets/clock"
	"github.com/smartystreets/gunit"
	"github.com/smartystreets/logging"

	"bitbucket.org/smartystreets/swapper/contracts"
)

func TestProcessWaiterFixture(t *testing.T) {
	gunit.Run(new(ProcessWaiterFixture), t)
}

type ProcessWaiterFixture struct {
	*gunit.Fixture
	table  *FakeProcessTable
	waiter *ProcessWaiter
}

func (this *ProcessWaiterFixture) Setup() {
	this.table = &FakeProcessTable{}
	this.waiter = NewProcessWaiter(this.table, contracts.DefaultConfig().Process)
	this.waiter.sleeper = clock.StayAwake()
	this.waiter.logger = logging.Capture()
}

func (this *ProcessWaiterFixture) TestBlankNameDoesNotWait() {
	this.So(this.waiter.Wait(context.Background(), ""), should.BeTrue)
	this.So(this.table.calls, should.Equal, 0)
}

func (this *ProcessWaiterFixture) TestAbsentProcessReturnsImmediately() {
	this.table.running = []string{"explorer.exe", "other"}

	exited := this.waiter.Wait(context.Background(), "app.exe")

	this.So(exited, should.BeTrue)
	this.So(this.waiter.sleeper.Naps, should.BeEmpty)
}

func (this *ProcessWaiterFixture) TestPollsUntilProcessExits() {
	this.table.running = []string{"APP.EXE"}
	this.table.exitAfter = 3

	exited := this.waiter.Wait(context.Background(), "app.exe")

	this.So(exited, should.BeTrue)
	this.So(this.waiter.sleeper.Naps, should.Resemble, []time.Duration{
		500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond,
	})
}

func (this *ProcessWaiterFixture) TestGivesUpAfterTimeout() {
	this.table.running = []string{"app"}

	exited := this.waiter.Wait(context.Background(), "app.exe")

	this.So(exited, should.BeFalse)
	this.So(this.waiter.sleeper.Naps, should.HaveLength, 120)
}

func (this *ProcessWaiterFixture) TestLookupFailuresKeepPolling() {
	this.table.err = errors.New("access denied")
	this.table.failures = 2

	exited := this.waiter.Wait(context.Background(), "app")

	this.So(exited, should.BeTrue)
	this.So(this.table.calls, should.Equal, 3)
	this.So(this.waiter.sleeper.Naps, should.HaveLength, 2)
}

/////////////////////////////////////////////////////////////

type FakeProcessTable struct {
	running   []string
	exitAfter int
	err       error
	failures  int
	calls     int
}

func (this *FakeProcessTable) Names(_ context.Context) ([]string, error) {
	this.calls++
	if this.calls <= this.failures {
		return nil, this.err
	}
	if this.exitAfter > 0 && this.calls > this.exitAfter {
		return nil, nil
	}
	return this.running, nil
}
