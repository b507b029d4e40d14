package validation

import (
	"net/url"
	"regexp"
	"strings"

	"tubebrief/errors"
)

var externalIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,64}$`)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateURL performs URL validation
func (v *Validator) ValidateURL(urlStr string) error {
	const op = "Validator.ValidateURL"

	if urlStr == "" {
		return errors.InvalidInput(op, nil, "URL is required")
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return errors.InvalidInput(op, err, "Invalid URL format")
	}

	// Protocol validation
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.InvalidInput(op, nil, "URL must use HTTP or HTTPS")
	}

	// Domain validation
	host := parsedURL.Hostname()
	if !strings.Contains(host, "youtube.com") && !strings.Contains(host, "youtu.be") {
		return errors.InvalidInput(op, nil, "Only YouTube URLs are supported")
	}

	return nil
}

// ValidateExternalID checks the platform video id format.
func (v *Validator) ValidateExternalID(id string) error {
	const op = "Validator.ValidateExternalID"

	if id == "" {
		return errors.InvalidInput(op, nil, "External ID is required")
	}
	if !externalIDPattern.MatchString(id) {
		return errors.InvalidInput(op, nil, "Invalid external ID format")
	}
	return nil
}
