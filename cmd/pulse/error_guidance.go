package main

import (
	"context"
	"errors"
	"net"

	"pulse/internal/tracker"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *tracker.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case 401, 403:
			lines = append(lines, "hint: verify PULSE_TRACKER_TOKEN is set and has access to the workspace.")
		case 429:
			lines = append(lines, "hint: the tracker is rate limiting; rerun later or lower fetch_workers.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: the tracker returned an internal error; retry the run later.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; increase PULSE_HTTP_TIMEOUT for slow networks.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: check that api_url and webhook_url are reachable from this host.",
			"hint: you can increase PULSE_HTTP_TIMEOUT for slower environments.",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
