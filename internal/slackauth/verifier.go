package slackauth

import (
	"net/http"
	"strconv"
	"time"
)

// Verifier binds the process-wide signing secret and a clock.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Verifier)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		v.now = now
	}
}

func NewVerifier(signingSecret string, opts ...Option) *Verifier {
	v := &Verifier{
		secret: []byte(signingSecret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks req against the verifier's secret at the current wall-clock time.
func (v *Verifier) Verify(req IncomingRequest) bool {
	return Verify(req, v.secret, v.now())
}

// SignHeaders sets timestamp and signature headers for body as Slack would at time t.
// Used by the slacksign tool and by tests that need a valid request.
func SignHeaders(header http.Header, signingSecret string, body []byte, t time.Time) {
	ts := strconv.FormatInt(t.Unix(), 10)
	header.Set(TimestampHeader, ts)
	header.Set(SignatureHeader, Sign([]byte(signingSecret), ts, body))
}
