package ratelimit

import (
	"fmt"
	"time"
)

// Kind is a fixed time window over which a request count is bounded.
type Kind string

const (
	Minute Kind = "minute"
	Hour   Kind = "hour"
	Day    Kind = "day"
)

func (k Kind) Duration() time.Duration {
	switch k {
	case Minute:
		return time.Minute
	case Hour:
		return time.Hour
	case Day:
		return 24 * time.Hour
	}
	return 0
}

func (k Kind) String() string {
	return string(k)
}

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Minute, Hour, Day:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown window kind: %s", s)
}
