package core

import (
	"errors"
	"testing"

	"github.com/smartystreets/assertions/should"
	"github.com/smartystreets/gunit"

	"bitbucket.org/smartystreets/swapper/contracts"
	"bitbucket.org/smartystreets/swapper/fs"
)

func TestConfigLoaderFixture(t *testing.T) {
	gunit.Run(new(ConfigLoaderFixture), t)
}

type ConfigLoaderFixture struct {
	*gunit.Fixture

	loader      *ConfigLoader
	storage     *fs.InMemoryFileSystem
	environment FakeEnvironment
}

func (this *ConfigLoaderFixture) Setup() {
	this.storage = fs.NewInMemoryFileSystem()
	this.environment = make(FakeEnvironment)
	this.loader = NewConfigLoader(this.storage, this.environment)
}

func (this *ConfigLoaderFixture) TestNoFileYieldsDefaults() {
	config, err := this.loader.Load("")

	this.So(err, should.BeNil)
	this.So(config, should.Resemble, contracts.DefaultConfig())
}

func (this *ConfigLoaderFixture) TestFileOverridesOnlyWhatItNames() {
	this.storage.WriteFile("/etc/swapper.toml", []byte(`
install_root = "/opt/app"
success_policy = "strict"

[install]
max_attempts = 3

[transport]
user_agent = "app-updater/2"
`))

	config, err := this.loader.Load("/etc/swapper.toml")

	expected := contracts.DefaultConfig()
	expected.InstallRoot = "/opt/app"
	expected.SuccessPolicy = contracts.SuccessStrict
	expected.Install.MaxAttempts = 3
	expected.Transport.UserAgent = "app-updater/2"
	this.So(err, should.BeNil)
	this.So(config, should.Resemble, expected)
}

func (this *ConfigLoaderFixture) TestEnvironmentOverridesFile() {
	this.storage.WriteFile("/etc/swapper.toml", []byte(`install_root = "/opt/app"`))
	this.environment["SWAPPER_INSTALL_ROOT"] = "  /srv/app  "
	this.environment["SWAPPER_MAX_RETRY"] = "5"
	this.environment["SWAPPER_SUCCESS_POLICY"] = "STRICT"

	config, err := this.loader.Load("/etc/swapper.toml")

	this.So(err, should.BeNil)
	this.So(config.InstallRoot, should.Equal, "/srv/app")
	this.So(config.Download.MaxRetry, should.Equal, 5)
	this.So(config.SuccessPolicy, should.Equal, contracts.SuccessStrict)
}

func (this *ConfigLoaderFixture) TestMissingFileIsError() {
	config, err := this.loader.Load("/missing.toml")

	this.So(err, should.NotBeNil)
	this.So(config, should.BeZeroValue)
}

func (this *ConfigLoaderFixture) TestInvalidTOMLIsError() {
	this.storage.WriteFile("/etc/swapper.toml", []byte("install_root = ["))

	_, err := this.loader.Load("/etc/swapper.toml")

	this.So(err, should.NotBeNil)
}

func (this *ConfigLoaderFixture) TestInvalidRetryCountInEnvironment() {
	this.environment["SWAPPER_MAX_RETRY"] = "many"

	_, err := this.loader.Load("")

	this.So(err, should.NotBeNil)
}

func (this *ConfigLoaderFixture) TestValidation() {
	this.assertInvalid(func(config *contracts.Config) { config.Download.MaxRetry = -1 }, maxRetryErr)
	this.assertInvalid(func(config *contracts.Config) { config.Install.RetryDelayMillis = -1 }, negativeDelayErr)
	this.assertInvalid(func(config *contracts.Config) { config.Install.MaxAttempts = 0 }, maxAttemptsErr)
	this.assertInvalid(func(config *contracts.Config) { config.Process.PollIntervalMillis = 0 }, pollIntervalErr)
	this.assertInvalid(func(config *contracts.Config) { config.Process.TimeoutSeconds = -1 }, processTimeoutErr)
	this.assertInvalid(func(config *contracts.Config) { config.PayloadPath = "" }, blankPayloadPathErr)
	this.assertInvalid(func(config *contracts.Config) { config.SuccessPolicy = "lenient" }, successPolicyErr)
	this.assertInvalid(func(config *contracts.Config) { config.Transport.MinTLSVersion = "2.0" }, tlsVersionErr)
}

func (this *ConfigLoaderFixture) assertInvalid(mutate func(*contracts.Config), expected error) {
	config := contracts.DefaultConfig()
	mutate(&config)
	this.So(errors.Is(ValidateConfig(config), expected), should.BeTrue)
}

/////////////////////////////////////////////////////////////

type FakeEnvironment map[string]string

func (this FakeEnvironment) LookupEnv(key string) (value string, set bool) {
	value, set = this[key]
	return value, set
}
