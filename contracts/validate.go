package contracts

import (
	"errors"
	"fmt"
	"net/url"
)

func (this Manifest) Validate() error {
	for index, item := range this.Items {
		if item.URL == "" {
			return fmt.Errorf("item %d: %w", index, errBlankURL)
		}
		address, err := url.Parse(item.URL)
		if err != nil {
			return fmt.Errorf("item %d: %w", index, err)
		}
		if address.Scheme == "" {
			return fmt.Errorf("item %d: %w", index, errRelativeURL)
		}
		if address.Scheme != "file" && address.Host == "" {
			return fmt.Errorf("item %d: %w", index, errMissingHost)
		}
	}
	return nil
}

var (
	errBlankURL    = errors.New("url is required")
	errRelativeURL = errors.New("url must be absolute")
	errMissingHost = errors.New("url must name a host")
)
