package core

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/smartystreets/assertions/should"
	"github.com/smartystreets/gunit"
	"github.com/smartystreets/logging"

	"bitbucket.org/smartystreets/swapper/fs"
)

func TestPayloadReaderFixture(t *testing.T) {
	gunit.Run(new(PayloadReaderFixture), t)
}

type PayloadReaderFixture struct {
	*gunit.Fixture
	storage *fs.InMemoryFileSystem
	reader  *PayloadReader
}

func (this *PayloadReaderFixture) Setup() {
	this.storage = fs.NewInMemoryFileSystem()
	this.reader = NewPayloadReader(this.storage)
	this.reader.logger = logging.Capture()
}

func (this *PayloadReaderFixture) TestPayloadDecodedAndDeleted() {
	document := `{"list": []}`
	this.storage.WriteFile("/app/update", []byte(base64.StdEncoding.EncodeToString([]byte(document))+"\r\n"))

	raw, err := this.reader.Read("/app/update")

	_, missing := this.storage.Stat("/app/update")
	this.So(err, should.BeNil)
	this.So(raw, should.Equal, document)
	this.So(missing, should.NotBeNil)
}

func (this *PayloadReaderFixture) TestMissingPayload() {
	_, err := this.reader.Read("/app/update")

	this.So(errors.Is(err, errPayloadUnreadable), should.BeTrue)
}

func (this *PayloadReaderFixture) TestInvalidEncodingStillDeletesPayload() {
	this.storage.WriteFile("/app/update", []byte("%%% not base64 %%%"))

	_, err := this.reader.Read("/app/update")

	_, missing := this.storage.Stat("/app/update")
	this.So(errors.Is(err, errPayloadEncoding), should.BeTrue)
	this.So(missing, should.NotBeNil)
}

func (this *PayloadReaderFixture) TestEmptyPayload() {
	this.storage.WriteFile("/app/update", []byte("  "))

	_, err := this.reader.Read("/app/update")

	this.So(errors.Is(err, errPayloadEmpty), should.BeTrue)
}

func (this *PayloadReaderFixture) TestDeletionFailureIgnored() {
	this.storage.WriteFile("/app/update", []byte(base64.StdEncoding.EncodeToString([]byte("{}"))))
	this.storage.Lock("/app/update", 1)

	raw, err := this.reader.Read("/app/update")

	this.So(err, should.BeNil)
	this.So(raw, should.Equal, "{}")
}
