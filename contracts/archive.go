package contracts

// Extractor unpacks the archive at source into the directory destination.
type Extractor interface {
	Extract(source, destination string) error
}
