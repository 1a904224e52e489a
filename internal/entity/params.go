package entity

import "strconv"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ParseLinkID parses a positive integer link id.
func ParseLinkID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidLinkID
	}
	return id, nil
}

// ParseLimit parses a result limit. An empty value selects DefaultLimit.
func ParseLimit(s string) (int, error) {
	if s == "" {
		return DefaultLimit, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > MaxLimit {
		return 0, ErrInvalidLimit
	}

	return n, nil
}
