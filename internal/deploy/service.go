// Package deploy drives the remote mesh provisioning operation: submit an
// update, then poll the status command until a terminal state or the poll
// budget runs out.
package deploy

import "context"

// MeshService abstracts the remote provisioning CLI so the state machine can
// be tested with a fake. SubmitUpdate pushes the mesh configuration;
// CheckStatus returns the service's free-form status text.
type MeshService interface {
	SubmitUpdate(ctx context.Context, meshConfigPath string) error
	CheckStatus(ctx context.Context) (string, error)
}
