package domain

// Resource names a permission-controlled area of the application.
type Resource string

const (
	ResourceAssets           Resource = "assets"
	ResourceComponents       Resource = "components"
	ResourceAccessories      Resource = "accessories"
	ResourceConsumables      Resource = "consumables"
	ResourceLicenses         Resource = "licenses"
	ResourceUsers            Resource = "users"
	ResourceReports          Resource = "reports"
	ResourceVMMonitoring     Resource = "vmMonitoring"
	ResourceNetworkDiscovery Resource = "networkDiscovery"
	ResourceBitlockerKeys    Resource = "bitlockerKeys"
	ResourceAdmin            Resource = "admin"
)

// AllResources lists every resource in display order.
var AllResources = []Resource{
	ResourceAssets,
	ResourceComponents,
	ResourceAccessories,
	ResourceConsumables,
	ResourceLicenses,
	ResourceUsers,
	ResourceReports,
	ResourceVMMonitoring,
	ResourceNetworkDiscovery,
	ResourceBitlockerKeys,
	ResourceAdmin,
}

// Capabilities are the actions allowed on one resource.
type Capabilities struct {
	View   bool `json:"view" yaml:"view"`
	Edit   bool `json:"edit" yaml:"edit"`
	Add    bool `json:"add" yaml:"add"`
	Delete bool `json:"delete" yaml:"delete"`
}

// PermissionMatrix maps every resource to its capabilities. It is derived
// from isAdmin/roleId on each request and never stored on the user.
type PermissionMatrix map[Resource]Capabilities

// FullAccess is the admin matrix. Nothing else builds an all-true matrix.
func FullAccess() PermissionMatrix {
	all := Capabilities{View: true, Edit: true, Add: true, Delete: true}
	m := make(PermissionMatrix, len(AllResources))
	for _, r := range AllResources {
		m[r] = all
	}
	return m
}

// DefaultAccess is granted to users with no role or an unknown role:
// read-only on the inventory resources.
func DefaultAccess() PermissionMatrix {
	m := NoAccess()
	for _, r := range []Resource{
		ResourceAssets,
		ResourceComponents,
		ResourceAccessories,
		ResourceConsumables,
		ResourceLicenses,
	} {
		m[r] = Capabilities{View: true}
	}
	return m
}

// NoAccess returns a matrix with every resource present and denied.
func NoAccess() PermissionMatrix {
	m := make(PermissionMatrix, len(AllResources))
	for _, r := range AllResources {
		m[r] = Capabilities{}
	}
	return m
}

// Normalize returns a copy holding exactly the known resources; missing ones
// are denied and unknown keys dropped.
func (m PermissionMatrix) Normalize() PermissionMatrix {
	out := NoAccess()
	for _, r := range AllResources {
		if c, ok := m[r]; ok {
			out[r] = c
		}
	}
	return out
}

// Can reports whether the matrix grants the capability check on r.
func (m PermissionMatrix) Can(r Resource, check func(Capabilities) bool) bool {
	c, ok := m[r]
	return ok && check(c)
}
