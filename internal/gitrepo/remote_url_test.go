package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devops-foundry/gitgovern/internal/gitrepo"
)

func TestParseRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name           string
		remote         string
		expectedRemote gitrepo.RemoteURL
		expectError    bool
	}{
		{
			name:   "scp_style_ssh_remote",
			remote: "git@github.com:octo/widgets.git",
			expectedRemote: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolSSH,
				Host:       "github.com",
				Owner:      "octo",
				Repository: "widgets",
			},
		},
		{
			name:   "ssh_protocol_remote",
			remote: "ssh://git@github.com/octo/widgets.git",
			expectedRemote: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolSSH,
				Host:       "github.com",
				Owner:      "octo",
				Repository: "widgets",
			},
		},
		{
			name:   "https_remote_without_suffix",
			remote: "https://github.com/octo/widgets",
			expectedRemote: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolHTTPS,
				Host:       "github.com",
				Owner:      "octo",
				Repository: "widgets",
			},
		},
		{name: "empty_remote", remote: "  ", expectError: true},
		{name: "unsupported_protocol", remote: "ftp://github.com/octo/widgets", expectError: true},
		{name: "ssh_remote_missing_repository", remote: "git@github.com:octo", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			parsedRemote, parseError := gitrepo.ParseRemoteURL(testCase.remote)

			if testCase.expectError {
				require.Error(subtest, parseError)
				return
			}
			require.NoError(subtest, parseError)
			require.Equal(subtest, testCase.expectedRemote, parsedRemote)
		})
	}
}

func TestFormatRemoteURL(testInstance *testing.T) {
	sshRemote := gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, Host: "github.com", Owner: "octo", Repository: "widgets"}
	httpsRemote := gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTPS, Host: "github.com", Owner: "octo", Repository: "widgets"}

	sshFormatted, sshError := gitrepo.FormatRemoteURL(sshRemote)
	require.NoError(testInstance, sshError)
	require.Equal(testInstance, "git@github.com:octo/widgets.git", sshFormatted)

	httpsFormatted, httpsError := gitrepo.FormatRemoteURL(httpsRemote)
	require.NoError(testInstance, httpsError)
	require.Equal(testInstance, "https://github.com/octo/widgets.git", httpsFormatted)

	_, missingHostError := gitrepo.FormatRemoteURL(gitrepo.RemoteURL{Owner: "octo", Repository: "widgets"})
	require.Error(testInstance, missingHostError)
}
