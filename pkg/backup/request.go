package backup

import (
	"fmt"
	"strconv"
	"strings"

	"vkbackup/pkg/config"
	apperrors "vkbackup/pkg/errors"
)

// Request is the input collected from the user
type Request struct {
	UserID string
	Count  int
}

// Validate checks the request before any remote call is made
func (r Request) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return apperrors.Config("VK user id must not be empty", nil)
	}
	if r.Count <= 0 {
		return apperrors.Config(fmt.Sprintf("photo count must be a positive number, got %d", r.Count), nil)
	}
	return nil
}

// ParseCount interprets the count prompt. Empty input selects defaultCount,
// or config.DefaultPhotoCount when defaultCount is not positive.
func ParseCount(input string, defaultCount int) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		if defaultCount <= 0 {
			return config.DefaultPhotoCount, nil
		}
		return defaultCount, nil
	}

	n, err := strconv.Atoi(input)
	if err != nil {
		return 0, apperrors.Config(fmt.Sprintf("%q is not a number", input), nil)
	}
	if n <= 0 {
		return 0, apperrors.Config(fmt.Sprintf("photo count must be a positive number, got %d", n), nil)
	}
	return n, nil
}
