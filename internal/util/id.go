package util

import (
	"errors"
	"strconv"
)

var ErrBadID = errors.New("invalid id")

// ParseID accepts positive decimal ids only.
func ParseID(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, ErrBadID
	}
	return uint(v), nil
}

func FormatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
