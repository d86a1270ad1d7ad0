package utils

import "strconv"

// ToUint parses a route or query parameter as an unsigned identifier.
func ToUint(id string) (uint, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	return uint(n), err
}
