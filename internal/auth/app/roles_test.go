package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestLoadRoles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
roles:
  - name: " technician "
    description: Hardware team
    permissions:
      assets: {view: true, edit: true, add: true}
      components: {view: true}
  - name: auditor
    permissions:
      reports: {view: true}
`), 0o600))

	defs, err := LoadRoles(path)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	require.Equal(t, "technician", defs[0].Name)
	require.Equal(t, "Hardware team", defs[0].Description)
	require.Equal(t, domain.Capabilities{View: true, Edit: true, Add: true}, defs[0].Permissions[domain.ResourceAssets])
	require.Equal(t, domain.Capabilities{View: true}, defs[0].Permissions[domain.ResourceComponents])

	require.Equal(t, "auditor", defs[1].Name)
	require.Empty(t, defs[1].Description)
}

func TestLoadRoles_MissingFile(t *testing.T) {
	_, err := LoadRoles(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestParseRoles(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantLen int
		wantErr string
	}{
		{name: "empty file", data: "", wantLen: 0},
		{name: "no roles", data: "roles: []\n", wantLen: 0},
		{
			name:    "missing name",
			data:    "roles:\n  - description: nobody\n",
			wantErr: "name is required",
		},
		{
			name:    "duplicate ignoring case",
			data:    "roles:\n  - name: Tech\n  - name: tech\n",
			wantErr: "defined twice",
		},
		{
			name:    "unknown resource",
			data:    "roles:\n  - name: tech\n    permissions:\n      spaceships: {view: true}\n",
			wantErr: "unknown resource",
		},
		{
			name:    "unknown field",
			data:    "roles:\n  - name: tech\n    colour: blue\n",
			wantErr: "parse roles",
		},
		{
			name:    "unknown capability",
			data:    "roles:\n  - name: tech\n    permissions:\n      assets: {launch: true}\n",
			wantErr: "parse roles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs, err := parseRoles([]byte(tt.data))
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, defs, tt.wantLen)
		})
	}
}
