package shell

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"bitbucket.org/smartystreets/swapper/contracts"
)

// NewHTTPClient builds a client whose TLS floor and timeouts come from
// config. Nothing process-wide is altered.
func NewHTTPClient(config contracts.TransportConfig) *http.Client {
	return &http.Client{
		Timeout: seconds(config.RequestTimeoutSeconds),
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   seconds(config.DialTimeoutSeconds),
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSClientConfig:       &tls.Config{MinVersion: tlsVersion(config.MinTLSVersion)},
			MaxIdleConns:          32,
			IdleConnTimeout:       32 * time.Second,
			TLSHandshakeTimeout:   seconds(config.TLSHandshakeTimeoutSeconds),
			ExpectContinueTimeout: 1 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}
}

func seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}

func tlsVersion(version string) uint16 {
	switch version {
	case "1.0":
		return tls.VersionTLS10
	case "1.1":
		return tls.VersionTLS11
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}
