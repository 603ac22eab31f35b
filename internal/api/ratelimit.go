package api

import (
	"github.com/dunglas/httpsfv"
)

// RateLimit carries the storefront's quota hints from a 429 response.
// Zero values mean the server sent no usable header.
type RateLimit struct {
	Limit     int // requests per window
	Remaining int // requests left in the window
	Reset     int // seconds until the window resets
}

// ParseRateLimitHeader parses the RateLimit response header, an
// RFC 8941 Dictionary of the draft ratelimit-headers form:
//
//	RateLimit: limit=100, remaining=0, reset=30
//
// Unknown keys are ignored; a malformed header parses to the zero
// value, since a missing hint only degrades the retry message.
func ParseRateLimitHeader(header string) RateLimit {
	var rl RateLimit
	if header == "" {
		return rl
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return rl
	}

	rl.Limit = dictInt(dict, "limit")
	rl.Remaining = dictInt(dict, "remaining")
	rl.Reset = dictInt(dict, "reset")
	return rl
}

// dictInt extracts an integer item from a structured-field dictionary.
func dictInt(dict *httpsfv.Dictionary, key string) int {
	member, ok := dict.Get(key)
	if !ok {
		return 0
	}
	item, ok := member.(httpsfv.Item)
	if !ok {
		return 0
	}
	v, ok := item.Value.(int64)
	if !ok {
		return 0
	}
	return int(v)
}
