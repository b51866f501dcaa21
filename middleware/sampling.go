package middleware

import (
	"math/rand/v2"

	"github.com/devmarvs/jokebox"
)

// Sampler decides whether an access log line is written. Server errors are
// always logged regardless of the sampler.
type Sampler func(*jokebox.Context) bool

// SampleRate keeps roughly rate of all requests.
func SampleRate(rate float64) Sampler {
	switch {
	case rate >= 1:
		return func(*jokebox.Context) bool { return true }
	case rate <= 0:
		return func(*jokebox.Context) bool { return false }
	}
	return func(*jokebox.Context) bool {
		return rand.Float64() < rate
	}
}
