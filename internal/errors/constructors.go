package errors

// Convenience constructors for the common failure modes of the build and
// deploy pipelines.

// Config errors

func ConfigNotFound(path string) *MeshBuildError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigLoadFailed(path string, cause error) *MeshBuildError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "failed to load configuration").
		WithContext("path", path)
}

func ConfigRequired(field string) *MeshBuildError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *MeshBuildError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Build pipeline errors

func TemplateMissing(path string) *MeshBuildError {
	return New(CategoryTemplate, SeverityFatal, "resolver template not found").
		WithContext("path", path)
}

func ArtifactWriteFailed(path string, cause error) *MeshBuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "failed to write artifact").
		WithContext("path", path)
}

func HashingFailed(subject string, cause error) *MeshBuildError {
	return Wrap(cause, CategorySerialization, SeverityFatal, "failed to compute digest").
		WithContext("subject", subject)
}

// Deploy errors

// SubmitFailed is returned when the update submission budget is exhausted.
func SubmitFailed(attempts int, cause error) *MeshBuildError {
	return Wrap(cause, CategoryMesh, SeverityFatal, "mesh update submission failed").
		WithContext("attempts", attempts)
}

// PollFailed is returned when repeated status checks error out near the end of
// the poll budget.
func PollFailed(polls int, cause error) *MeshBuildError {
	return WrapRetryable(cause, CategoryNetwork, SeverityError, "mesh status polling failed").
		WithContext("polls", polls)
}

// RemoteFailure is an authoritative terminal failure reported by the mesh
// service. It is never retried.
func RemoteFailure(status string) *MeshBuildError {
	return New(CategoryMesh, SeverityFatal, "mesh service reported provisioning failure").
		WithContext("status", status)
}
