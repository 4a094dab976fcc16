// Package verification derives the short-lived submission tokens that bind an
// applicant's email to a one-minute time bucket.
//
// The same construction runs in two places: the API mints tokens for signed-in
// applicants and the spreadsheet validator recomputes them for every appended
// row. Both must be configured with the same shared secret and window.
package verification

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

const (
	// width of one token bucket
	bucketSize = time.Minute

	// number of trailing buckets accepted by default (now and the 9 before it)
	DefaultWindow = 10
)

var ErrMissingSecret = errors.New("verification secret is required")

type Codec struct {
	secret    string
	window    int
	lookahead int
	now       func() time.Time
}

type Option func(*Codec)

// WithWindow sets how many trailing one-minute buckets are accepted.
func WithWindow(buckets int) Option {
	return func(c *Codec) {
		if buckets > 0 {
			c.window = buckets
		}
	}
}

// WithLookahead accepts tokens from up to n buckets in the future, for a
// validator whose clock trails the issuer.
func WithLookahead(buckets int) Option {
	return func(c *Codec) {
		if buckets >= 0 {
			c.lookahead = buckets
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	c := &Codec{
		secret: secret,
		window: DefaultWindow,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Generate returns the hex SHA-256 of "email|bucket|secret" where bucket is
// the timestamp truncated to whole minutes since the epoch.
func (c *Codec) Generate(email string, at time.Time) string {
	return c.digest(email, bucketOf(at))
}

// Now mints a token for the current bucket.
func (c *Codec) Now(email string) string {
	return c.Generate(email, c.now())
}

func (c *Codec) IsValid(email, candidate string) bool {
	return c.IsValidAt(email, candidate, c.now())
}

// IsValidAt reports whether candidate matches one of the accepted buckets
// relative to at.
func (c *Codec) IsValidAt(email, candidate string, at time.Time) bool {
	if candidate == "" {
		return false
	}

	want := []byte(candidate)
	bucket := bucketOf(at)

	for k := -int64(c.lookahead); k < int64(c.window); k++ {
		got := []byte(c.digest(email, bucket-k))
		if subtle.ConstantTimeCompare(got, want) == 1 {
			return true
		}
	}

	return false
}

// Window returns the accepted trailing span, for diagnostics.
func (c *Codec) Window() time.Duration {
	return time.Duration(c.window) * bucketSize
}

func (c *Codec) digest(email string, bucket int64) string {
	sum := sha256.Sum256([]byte(email + "|" + strconv.FormatInt(bucket, 10) + "|" + c.secret))
	return hex.EncodeToString(sum[:])
}

// floor division so instants before the epoch land in the right bucket
func bucketOf(at time.Time) int64 {
	ms := at.UnixMilli()
	size := bucketSize.Milliseconds()

	b := ms / size
	if ms%size < 0 {
		b--
	}

	return b
}
