package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// parseCoords parses "x,y" into non-negative integers
func parseCoords(coordsStr string) (int, int, error) {
	parts := strings.Split(coordsStr, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid coordinate format. Expected 'x,y', got '%s'", coordsStr)
	}

	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil {
		return 0, 0, fmt.Errorf("invalid coordinate values. x and y must be integers. Got x='%s', y='%s'", parts[0], parts[1])
	}
	if x < 0 || y < 0 {
		return 0, 0, fmt.Errorf("x and y coordinates must be non-negative, got x=%d, y=%d", x, y)
	}
	return x, y, nil
}

// parsePositive parses a strictly positive integer argument
func parsePositive(name, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got '%s'", name, s)
	}
	return v, nil
}
