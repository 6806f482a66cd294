package core

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/smartystreets/logging"

	"bitbucket.org/smartystreets/swapper/contracts"
)

type PayloadFileSystem interface {
	contracts.FileReader
	contracts.Deleter
}

// PayloadReader consumes the one-shot payload file left by the application
// that requested the update.
type PayloadReader struct {
	logger  *logging.Logger
	storage PayloadFileSystem
}

func NewPayloadReader(storage PayloadFileSystem) *PayloadReader {
	return &PayloadReader{storage: storage}
}

// Read returns the decoded manifest text. The payload file is deleted as
// soon as it has been read, whether or not it decodes.
func (this *PayloadReader) Read(path string) (string, error) {
	data, err := this.storage.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errPayloadUnreadable, err)
	}
	if err = this.storage.Delete(path); err != nil {
		this.logger.Printf("[WARN] could not delete payload %s: %v", path, err)
	}

	encoded := strings.TrimSpace(string(data))
	if encoded == "" {
		return "", errPayloadEmpty
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errPayloadEncoding, err)
	}
	return string(decoded), nil
}

var (
	errPayloadUnreadable = errors.New("update payload could not be read")
	errPayloadEmpty      = errors.New("update payload is empty")
	errPayloadEncoding   = errors.New("update payload is not valid base64")
)
