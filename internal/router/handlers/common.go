package handlers

import (
	"strconv"
	"strings"
)

// parseID mirrors a lenient integer cast: anything unparsable is zero.
func parseID(value string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
