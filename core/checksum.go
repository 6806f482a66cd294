package core

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"bitbucket.org/smartystreets/swapper/contracts"
)

// ChecksumVerifier digests a staged download and compares it with the
// artifact's published checksum. The algorithm follows from the length of
// the hex digest.
type ChecksumVerifier struct {
	fileSystem contracts.FileOpener
	hashers    map[int]func() hash.Hash
}

func NewChecksumVerifier(fileSystem contracts.FileOpener) *ChecksumVerifier {
	return &ChecksumVerifier{
		fileSystem: fileSystem,
		hashers: map[int]func() hash.Hash{
			md5.Size * 2:    md5.New,
			sha1.Size * 2:   sha1.New,
			sha256.Size * 2: sha256.New,
		},
	}
}

func (this *ChecksumVerifier) Verify(item contracts.Artifact, localPath string) error {
	expected := strings.ToLower(strings.TrimSpace(item.Checksum))
	if expected == "" {
		return nil
	}
	hasher, found := this.hashers[len(expected)]
	if !found {
		return &contracts.IntegrityError{Name: item.DisplayName(), Expected: item.Checksum, Actual: "unsupported digest length"}
	}

	actual, err := this.digest(hasher(), localPath)
	if err != nil {
		return fmt.Errorf("checksum of %s: %w", localPath, err)
	}
	if actual != expected {
		return &contracts.IntegrityError{Name: item.DisplayName(), Expected: item.Checksum, Actual: actual}
	}
	return nil
}

func (this *ChecksumVerifier) digest(hasher hash.Hash, localPath string) (string, error) {
	reader, err := this.fileSystem.Open(localPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = reader.Close() }()

	if _, err = io.Copy(io.Discard, NewHashReader(reader, hasher)); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
