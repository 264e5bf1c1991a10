// Package httpx builds the outbound HTTP client shared by the Sui and Walrus clients.
package httpx

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// DefaultRetryMax matches go-retryablehttp's own default.
const DefaultRetryMax = 4

// Options configures NewClient.
type Options struct {
	Timeout  time.Duration
	RetryMax int
	Logger   *zap.Logger
}

// NewClient returns a standard *http.Client backed by go-retryablehttp with an
// otelhttp transport. After the last attempt the final response is handed back
// to the caller instead of being turned into an error, so status handling stays
// with the caller.
func NewClient(opts Options) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.HTTPClient.Transport = otelhttp.NewTransport(rc.HTTPClient.Transport)
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}
	if opts.Logger != nil {
		rc.Logger = leveledLogger{l: opts.Logger.Sugar()}
	} else {
		rc.Logger = nil
	}
	return rc.StandardClient()
}

type leveledLogger struct {
	l *zap.SugaredLogger
}

func (z leveledLogger) Error(msg string, kv ...interface{}) { z.l.Errorw(msg, kv...) }
func (z leveledLogger) Info(msg string, kv ...interface{})  { z.l.Infow(msg, kv...) }
func (z leveledLogger) Debug(msg string, kv ...interface{}) { z.l.Debugw(msg, kv...) }
func (z leveledLogger) Warn(msg string, kv ...interface{})  { z.l.Warnw(msg, kv...) }
