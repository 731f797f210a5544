// Package slackauth verifies that inbound requests were signed by Slack.
//
// Slack signs every request with HMAC-SHA256 over "v0:<timestamp>:<raw body>" using the
// app's signing secret and sends the result as "v0=<hex>" in X-Slack-Signature. A request
// is accepted only when the signature matches and the timestamp is within MaxSkew of the
// verifier's clock.
package slackauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"
)

const (
	SignatureHeader = "X-Slack-Signature"
	TimestampHeader = "X-Slack-Request-Timestamp"
	Version         = "v0"

	// MaxSkew bounds how far the request timestamp may be from now, in either direction.
	MaxSkew = 5 * time.Minute

	// "v0=" + 64 hex chars. Anything much longer is rejected before hashing.
	maxSignatureLen = 128
	maxTimestampLen = 20
)

// IncomingRequest is the part of an HTTP request needed for verification.
// The body is the raw bytes as received; it must not be re-encoded before Verify.
type IncomingRequest struct {
	headers    map[string]string
	body       []byte
	receivedAt time.Time
}

// NewIncomingRequest captures the first value of each header and the raw body.
func NewIncomingRequest(header http.Header, body []byte, receivedAt time.Time) IncomingRequest {
	headers := make(map[string]string, len(header))
	for key, values := range header {
		if len(values) > 0 {
			headers[http.CanonicalHeaderKey(key)] = values[0]
		}
	}
	return IncomingRequest{
		headers:    headers,
		body:       append([]byte(nil), body...),
		receivedAt: receivedAt,
	}
}

// Header returns the named header, matched case-insensitively.
func (r IncomingRequest) Header(name string) string {
	return r.headers[http.CanonicalHeaderKey(name)]
}

// Body returns a copy of the raw body.
func (r IncomingRequest) Body() []byte {
	return append([]byte(nil), r.body...)
}

func (r IncomingRequest) ReceivedAt() time.Time {
	return r.receivedAt
}

// signatureProof is what the caller claims next to what we computed.
type signatureProof struct {
	claimed   string
	timestamp string
	expected  string
}

func (p signatureProof) valid() bool {
	// hmac.Equal is constant time for equal lengths and false on a length mismatch.
	return hmac.Equal([]byte(p.expected), []byte(p.claimed))
}

// Verify reports whether req carries a valid, fresh Slack signature for signingSecret.
// It never panics and treats every malformed input as a failed verification.
func Verify(req IncomingRequest, signingSecret []byte, now time.Time) bool {
	if len(signingSecret) == 0 {
		return false
	}

	claimed := req.Header(SignatureHeader)
	timestamp := req.Header(TimestampHeader)
	if claimed == "" || timestamp == "" {
		return false
	}
	if len(claimed) > maxSignatureLen || len(timestamp) > maxTimestampLen {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if !fresh(ts, now) {
		return false
	}

	proof := signatureProof{
		claimed:   claimed,
		timestamp: timestamp,
		expected:  Sign(signingSecret, timestamp, req.body),
	}
	return proof.valid()
}

// fresh is written without subtracting ts so extreme values cannot overflow.
func fresh(ts int64, now time.Time) bool {
	nowSec := now.Unix()
	skew := int64(MaxSkew / time.Second)
	return ts >= nowSec-skew && ts <= nowSec+skew
}

// Sign computes the "v0=<hex>" signature for timestamp and body.
func Sign(signingSecret []byte, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, signingSecret)
	mac.Write([]byte(Version + ":"))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(":"))
	mac.Write(body)
	return Version + "=" + hex.EncodeToString(mac.Sum(nil))
}
