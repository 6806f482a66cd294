package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/smartystreets/assertions/should"
	"github.com/smartystreets/gunit"

	"bitbucket.org/smartystreets/swapper/contracts"
)

func TestOptionsFixture(t *testing.T) {
	gunit.Run(new(OptionsFixture), t)
}

type OptionsFixture struct {
	*gunit.Fixture
}

func executable() (string, error) {
	return filepath.FromSlash("/opt/app/swapper"), nil
}

func (this *OptionsFixture) TestDefaultsResolveAgainstExecutableDirectory() {
	config, err := Options{}.apply(contracts.DefaultConfig(), executable)

	root, _ := filepath.Abs(filepath.FromSlash("/opt/app"))
	this.So(err, should.BeNil)
	this.So(config.InstallRoot, should.Equal, root)
	this.So(config.PayloadPath, should.Equal, filepath.Join(root, "update"))
	this.So(config.SuccessPolicy, should.Equal, contracts.SuccessIsolated)
}

func (this *OptionsFixture) TestFlagsOverrideConfig() {
	options := Options{InstallRoot: "/srv/app", PayloadPath: "next", Strict: true}

	config, err := options.apply(contracts.DefaultConfig(), executable)

	root, _ := filepath.Abs("/srv/app")
	this.So(err, should.BeNil)
	this.So(config.InstallRoot, should.Equal, root)
	this.So(config.PayloadPath, should.Equal, filepath.Join(root, "next"))
	this.So(config.SuccessPolicy, should.Equal, contracts.SuccessStrict)
}

func (this *OptionsFixture) TestExecutableLookupFailure() {
	failing := func() (string, error) { return "", errors.New("unknown") }

	_, err := Options{}.apply(contracts.DefaultConfig(), failing)

	this.So(err, should.NotBeNil)
}

func (this *OptionsFixture) TestExitCodes() {
	this.So(exitCode(errors.New("plain")), should.Equal, exitFailure)
	this.So(exitCode(&exitError{code: exitInvalidInput, err: errors.New("bad")}), should.Equal, exitInvalidInput)
}
