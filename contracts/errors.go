package contracts

import "fmt"

// FormatError is returned when the manifest document is structurally invalid.
// It is fatal to the whole run and happens before any I/O.
type FormatError struct {
	Reason string
}

func (this *FormatError) Error() string {
	return fmt.Sprintf("malformed manifest: %s", this.Reason)
}

type DownloadError struct {
	URL      string
	Attempts int
	Err      error
}

func (this *DownloadError) Error() string {
	return fmt.Sprintf("download of %q failed after %d attempt(s): %v", this.URL, this.Attempts, this.Err)
}

func (this *DownloadError) Unwrap() error { return this.Err }

type IntegrityError struct {
	Name     string
	Expected string
	Actual   string
}

func (this *IntegrityError) Error() string {
	return fmt.Sprintf("checksum mismatch for %q (expected: [%s], actual: [%s])", this.Name, this.Expected, this.Actual)
}

type StagingError struct {
	Name string
	Err  error
}

func (this *StagingError) Error() string {
	return fmt.Sprintf("could not stage %q: %v", this.Name, this.Err)
}

func (this *StagingError) Unwrap() error { return this.Err }

type ReplacementError struct {
	Target   string
	Attempts int
	Err      error
}

func (this *ReplacementError) Error() string {
	return fmt.Sprintf("could not replace %q after %d attempt(s): %v", this.Target, this.Attempts, this.Err)
}

func (this *ReplacementError) Unwrap() error { return this.Err }
