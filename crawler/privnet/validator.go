package privnet

import (
	"io"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/mycok/uCrawl/crawler"
)

// Static and compile-time check to ensure Validator implements
// crawler.URLValidator interface.
var _ crawler.URLValidator = (*Validator)(nil)

// Validator rejects URLs whose host is private or cannot be resolved.
type Validator struct {
	detector crawler.PrivateNetworkDetector
	logger   *logrus.Entry
}

// NewValidator wraps detector. A nil logger discards all output.
func NewValidator(detector crawler.PrivateNetworkDetector, logger *logrus.Entry) *Validator {
	if logger == nil {
		logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return &Validator{detector: detector, logger: logger}
}

// IsValid implements crawler.URLValidator.
func (v *Validator) IsValid(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Hostname() == "" {
		return false
	}
	host := parsed.Hostname()

	private, err := v.detector.IsNetworkPrivate(host)
	if err != nil {
		v.logger.WithField("host", host).WithError(err).Debug("unable to resolve host")
		return false
	}

	if private {
		v.logger.WithField("url", u).Debug("skipping private network link")
	}

	return !private
}
