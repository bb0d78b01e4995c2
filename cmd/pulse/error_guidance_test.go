package main

import (
	"net"
	"testing"

	"pulse/internal/tracker"
)

func TestFormatCLIError_NetworkGuidance(t *testing.T) {
	err := &net.DNSError{Err: "dial tcp: connection refused", Name: "app.example.com", IsTemporary: true}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: check that api_url and webhook_url are reachable from this host.") {
		t.Fatalf("expected connectivity guidance, got %v", lines)
	}
}

func TestFormatCLIError_AuthGuidance(t *testing.T) {
	err := &tracker.APIError{Status: 401, Message: "Not Authorized"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: verify PULSE_TRACKER_TOKEN is set and has access to the workspace.") {
		t.Fatalf("expected auth guidance, got %v", lines)
	}
}

func TestFormatCLIError_RateLimitGuidance(t *testing.T) {
	err := &tracker.APIError{Status: 429, Message: "Too Many Requests"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: the tracker is rate limiting; rerun later or lower fetch_workers.") {
		t.Fatalf("expected rate-limit guidance, got %v", lines)
	}
}

func TestFormatCLIError_InternalGuidance(t *testing.T) {
	err := &tracker.APIError{Status: 500, Message: "Server Error"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: the tracker returned an internal error; retry the run later.") {
		t.Fatalf("expected internal-error guidance, got %v", lines)
	}
}

func TestFormatCLIError_NilAndPlainErrors(t *testing.T) {
	if lines := formatCLIError(nil); lines != nil {
		t.Fatalf("expected nil for nil error, got %v", lines)
	}
}

func containsLine(lines []string, expected string) bool {
	for _, line := range lines {
		if line == expected {
			return true
		}
	}
	return false
}
