package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{CodeUsage, ExitUsage},
		{CodeTokenNotFound, ExitTokenNotFound},
		{CodeAuth, ExitAuth},
		{CodeCallback, ExitCallback},
		{CodeRateLimit, ExitRateLimit},
		{CodeServer, ExitServer},
		{CodeNetwork, ExitNetwork},
		{CodeAPI, ExitAPI},
		{"something-else", ExitAPI},
	}

	for _, tt := range tests {
		if got := ExitCodeFor(tt.code); got != tt.want {
			t.Errorf("ExitCodeFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	e := ErrTokenNotFound(12345)
	if e.Code != CodeTokenNotFound {
		t.Errorf("Code = %q, want %q", e.Code, CodeTokenNotFound)
	}
	if e.Error() == "" {
		t.Error("Error() should not be empty")
	}

	rl := ErrRateLimit(30)
	if !rl.Retryable {
		t.Error("rate limit errors should be retryable")
	}
	if rl.Hint != "Try again in 30 seconds" {
		t.Errorf("Hint = %q", rl.Hint)
	}
}

func TestAsError(t *testing.T) {
	typed := ErrServer(502, "Gateway error (502)")
	if got := AsError(typed); got != typed {
		t.Error("AsError should pass through *Error unchanged")
	}

	plain := errors.New("boom")
	got := AsError(plain)
	if got.Code != CodeAPI {
		t.Errorf("Code = %q, want %q", got.Code, CodeAPI)
	}
	if !errors.Is(got, plain) {
		t.Error("AsError should preserve the cause chain")
	}
}

func TestWriterJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf})

	if err := w.OK(map[string]int{"players": 32412}, WithSummary("Tranquility online")); err != nil {
		t.Fatalf("OK failed: %v", err)
	}

	var resp struct {
		OK      bool           `json:"ok"`
		Data    map[string]int `json:"data"`
		Summary string         `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("invalid envelope JSON: %v", err)
	}
	if !resp.OK || resp.Data["players"] != 32412 || resp.Summary != "Tranquility online" {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestWriterQuietSkipsEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatQuiet, Writer: &buf})

	if err := w.OK([]int{1, 2, 3}); err != nil {
		t.Fatalf("OK failed: %v", err)
	}

	var data []int
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("quiet output should be bare data: %v", err)
	}
	if len(data) != 3 {
		t.Errorf("data = %v", data)
	}
}

func TestWriterErrEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf})

	if err := w.Err(ErrCallback("state mismatch")); err != nil {
		t.Fatalf("Err failed: %v", err)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error envelope: %v", err)
	}
	if resp.OK || resp.Code != CodeCallback || resp.Error != "state mismatch" {
		t.Errorf("unexpected error envelope: %+v", resp)
	}
}
