package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"gopkg.in/yaml.v3"
)

// rolesFile is the layout of ROLES_FILE:
//
//	roles:
//	  - name: technician
//	    description: Hardware team
//	    permissions:
//	      assets: {view: true, edit: true, add: true}
//	      components: {view: true}
type rolesFile struct {
	Roles []domain.RoleDefinition `yaml:"roles"`
}

// LoadRoles reads role definitions from a YAML file. Unknown keys and
// resource names are rejected so a typo cannot silently deny access.
func LoadRoles(path string) ([]domain.RoleDefinition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read roles %s: %w", path, err)
	}
	return parseRoles(data)
}

func parseRoles(data []byte) ([]domain.RoleDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f rolesFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse roles: %w", err)
	}

	seen := make(map[string]bool, len(f.Roles))
	for i := range f.Roles {
		def := &f.Roles[i]
		def.Name = strings.TrimSpace(def.Name)
		if def.Name == "" {
			return nil, fmt.Errorf("role %d: name is required", i+1)
		}
		key := strings.ToLower(def.Name)
		if seen[key] {
			return nil, fmt.Errorf("role %q defined twice", def.Name)
		}
		seen[key] = true

		for res := range def.Permissions {
			if !slices.Contains(domain.AllResources, res) {
				return nil, fmt.Errorf("role %q: unknown resource %q", def.Name, res)
			}
		}
	}
	return f.Roles, nil
}
