package deploy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		status string
		want   StatusClass
	}{
		{"Mesh provisioned successfully.", StatusSucceeded},
		{"Deployed", StatusSucceeded},
		{"Operation completed with SUCCESS", StatusSucceeded},
		{"error: invalid config", StatusFailed},
		{"Provisioning failed", StatusFailed},
		{"mesh build FAILURE", StatusFailed},
		{"provisioning", StatusProvisioning},
		{"Update in progress", StatusProvisioning},
		{"pending", StatusProvisioning},
		{"building mesh artifacts", StatusProvisioning},
		{"", StatusUnknown},
		{"???", StatusUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.status))
		})
	}
}

func TestClassifySuccessWinsOverProvisioningWords(t *testing.T) {
	// "provisioned successfully" contains no failure keyword but does share
	// a stem with "provisioning"; success must still win.
	require.Equal(t, StatusSucceeded, Classify("Mesh provisioned successfully after provisioning"))
}

func TestClassifyTerminal(t *testing.T) {
	require.True(t, StatusSucceeded.Terminal())
	require.True(t, StatusFailed.Terminal())
	require.False(t, StatusProvisioning.Terminal())
	require.False(t, StatusUnknown.Terminal())
}
