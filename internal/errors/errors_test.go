package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestMeshBuildError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *MeshBuildError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestMeshBuildError_WithContext(t *testing.T) {
	err := New(CategoryMesh, SeverityWarning, "status check failed").
		WithContext("attempt", 2).
		WithContext("status", "pending")

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}

	if err.Context["attempt"] != 2 {
		t.Errorf("Context[attempt] = %v, want 2", err.Context["attempt"])
	}

	if err.Context["status"] != "pending" {
		t.Errorf("Context[status] = %v, want pending", err.Context["status"])
	}
}

func TestMeshBuildError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(cause, CategoryNetwork, SeverityError, "request failed")

	if !stdErrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := Retryable(CategoryNetwork, SeverityError, "transient failure")
	if !IsRetryable(retryable) {
		t.Error("Retryable error should report retryable")
	}

	fatal := New(CategoryConfig, SeverityFatal, "bad config")
	if IsRetryable(fatal) {
		t.Error("non-retryable error should not report retryable")
	}

	if IsRetryable(fmt.Errorf("plain error")) {
		t.Error("plain error should not report retryable")
	}
}

func TestGetCategory(t *testing.T) {
	if got := GetCategory(TemplateMissing("resolvers.tmpl.js")); got != CategoryTemplate {
		t.Errorf("GetCategory = %s, want %s", got, CategoryTemplate)
	}
	if got := GetCategory(fmt.Errorf("plain")); got != CategoryInternal {
		t.Errorf("GetCategory = %s, want %s", got, CategoryInternal)
	}
}

func TestExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	if code := adapter.ExitCodeFor(nil); code != 0 {
		t.Errorf("nil error exit code = %d, want 0", code)
	}
	if code := adapter.ExitCodeFor(RemoteFailure("error: invalid config")); code != 1 {
		t.Errorf("remote failure exit code = %d, want 1", code)
	}
	if code := adapter.ExitCodeFor(SubmitFailed(3, fmt.Errorf("exec failed"))); code != 1 {
		t.Errorf("submit failure exit code = %d, want 1", code)
	}
}

func TestFormatError_Remediation(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	msg := adapter.FormatError(RemoteFailure("error: invalid config"))
	if want := "try: aio api-mesh:status"; !strings.Contains(msg, want) {
		t.Errorf("FormatError = %q, want it to contain %q", msg, want)
	}

	msg = adapter.FormatError(ConfigNotFound("meshbuild.yaml"))
	if want := "try: meshbuild init"; !strings.Contains(msg, want) {
		t.Errorf("FormatError = %q, want it to contain %q", msg, want)
	}
}
