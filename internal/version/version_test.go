package version

import (
	"strings"
	"testing"
)

func TestFull(t *testing.T) {
	if !strings.HasPrefix(Full(), "esi version ") {
		t.Errorf("Full() = %q, want prefix %q", Full(), "esi version ")
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "esi-cli/") {
		t.Errorf("UserAgent() = %q, want prefix %q", ua, "esi-cli/")
	}
	if !strings.Contains(ua, "github.com/evetools/esi-cli") {
		t.Errorf("UserAgent() = %q, want contact URL", ua)
	}
}
