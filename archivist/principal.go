package archivist

// Role is the site-wide role of a principal.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Principal is a user as seen by archivist. Principals are managed by an
// external identity system and are read-only here.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`

	// Clearance may be empty, in which case DefaultLevel applies.
	Clearance Level `json:"securityClearance,omitempty"`

	IsDepartmentManager      bool `json:"isDepartmentManager"`
	CanManageDepartmentTasks bool `json:"canManageDepartmentTasks"`

	DepartmentIDs []string `json:"departmentIds,omitempty"`
}

type PrincipalRepository interface {
	Get(id string) (Principal, error)
	List() ([]Principal, error)
	Upsert(*Principal) error
}
