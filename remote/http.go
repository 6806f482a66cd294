package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/smartystreets/logging"

	"bitbucket.org/smartystreets/swapper/contracts"
)

type HTTPDownloader struct {
	logger    *logging.Logger
	client    *http.Client
	files     contracts.FileCreator
	userAgent string
}

func NewHTTPDownloader(client *http.Client, files contracts.FileCreator, userAgent string) *HTTPDownloader {
	return &HTTPDownloader{client: client, files: files, userAgent: userAgent}
}

// Download writes the remote content to request.LocalPath, replacing any
// partial content left by a previous attempt.
func (this *HTTPDownloader) Download(ctx context.Context, request contracts.DownloadRequest) error {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, request.RemoteAddress, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	if this.userAgent != "" {
		httpRequest.Header.Set("User-Agent", this.userAgent)
	}

	response, err := this.client.Do(httpRequest)
	if err != nil {
		return fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status: %s", response.Status)
	}

	file, err := this.files.Create(request.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", request.LocalPath, err)
	}

	counter := newProgressCounter(response.ContentLength, request.Report)
	written, err := io.Copy(io.MultiWriter(file, counter), response.Body)
	counter.Close()
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write response body to file: %w", err)
	}
	if response.ContentLength > 0 && written != response.ContentLength {
		return fmt.Errorf("truncated download: received %d of %d bytes", written, response.ContentLength)
	}
	this.logger.Printf("[INFO] downloaded %s (%d bytes)", request.RemoteAddress, written)
	return nil
}
