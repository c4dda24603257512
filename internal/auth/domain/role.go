package domain

import "time"

type Role struct {
	ID          string
	Name        string
	Description string
	Permissions PermissionMatrix // stored as JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoleDefinition is a role as written in the roles file.
type RoleDefinition struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Permissions PermissionMatrix `yaml:"permissions"`
}
