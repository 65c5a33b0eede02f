// Package access decides what a principal may see.
//
// Two rules coexist and must not be merged. Documents are visible to their
// owner, their assignees and managers, whatever the clearance of the
// principal. Tasks are visible when their level does not exceed the
// clearance of the principal.
package access

import (
	"github.com/bobinette/archivist/archivist"
)

// Capabilities are the rights of a principal, resolved once from its role and
// manager flags.
type Capabilities struct {
	Admin           bool
	ManageDocuments bool
	ManageTasks     bool
}

// Manager reports whether the principal manages documents or tasks of its
// department. Admin alone does not make a manager.
func (c Capabilities) Manager() bool {
	return c.ManageDocuments || c.ManageTasks
}

// Override reports whether the principal bypasses ownership and assignment
// checks when reading documents.
func (c Capabilities) Override() bool {
	return c.Admin || c.Manager()
}

func Resolve(p archivist.Principal) Capabilities {
	return Capabilities{
		Admin:           p.Role == archivist.RoleAdmin,
		ManageDocuments: p.IsDepartmentManager,
		ManageTasks:     p.CanManageDepartmentTasks,
	}
}

// ResolveClearance returns the clearance of p, DefaultLevel if unset.
func ResolveClearance(p archivist.Principal) archivist.Level {
	return p.Clearance.Or(archivist.DefaultLevel)
}

func CanAccess(p archivist.Principal, doc archivist.Document) bool {
	switch {
	case doc.Confidentiality == archivist.Public:
		return true
	case doc.OwnerID == p.ID:
		return true
	case doc.HasAssignee(p.ID):
		return true
	}
	return Resolve(p).Override()
}

// FilterVisible returns the documents p can access, in their original order.
func FilterVisible(p archivist.Principal, docs []archivist.Document) []archivist.Document {
	visible := make([]archivist.Document, 0, len(docs))
	for _, doc := range docs {
		if CanAccess(p, doc) {
			visible = append(visible, doc)
		}
	}
	return visible
}

func TaskVisible(p archivist.Principal, task archivist.Task) bool {
	level := task.Confidentiality.Or(archivist.DefaultLevel)
	return level.Rank() <= ResolveClearance(p).Rank()
}

// FilterTasks returns the tasks p can see, in their original order.
func FilterTasks(p archivist.Principal, tasks []archivist.Task) []archivist.Task {
	visible := make([]archivist.Task, 0, len(tasks))
	for _, task := range tasks {
		if TaskVisible(p, task) {
			visible = append(visible, task)
		}
	}
	return visible
}
