package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/errors"
)

func TestPrincipalRepository(t *testing.T, repo archivist.PrincipalRepository) {
	alice := archivist.Principal{ID: "alice", Name: "Alice", Role: archivist.RoleUser, Clearance: archivist.Secret}
	root := archivist.Principal{Name: "Root", Role: archivist.RoleAdmin, IsDepartmentManager: true}

	require.NoError(t, repo.Upsert(&alice))
	require.NoError(t, repo.Upsert(&root))
	require.NotEmpty(t, root.ID, "upsert should set an id")

	retrieved, err := repo.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, alice, retrieved)

	alice.CanManageDepartmentTasks = true
	require.NoError(t, repo.Upsert(&alice))
	retrieved, err = repo.Get("alice")
	require.NoError(t, err)
	assert.True(t, retrieved.CanManageDepartmentTasks)

	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = repo.Get("nobody")
	errors.AssertCode(t, err, 404)
}

func TestTaskRepository(t *testing.T, repo archivist.TaskRepository) {
	tasks := []*archivist.Task{
		{Title: "Review contract", DepartmentID: "legal", Status: "pending", Confidentiality: archivist.Secret},
		{Title: "Sign memo", DepartmentID: "hr", Status: "pending"},
	}
	for _, task := range tasks {
		require.NoError(t, repo.Upsert(task))
		require.NotEmpty(t, task.ID)
	}

	tasks[1].Status = "completed"
	require.NoError(t, repo.Upsert(tasks[1]))

	listed, err := repo.List()
	require.NoError(t, err)
	require.Len(t, listed, 2)

	byID := make(map[string]archivist.Task)
	for _, task := range listed {
		byID[task.ID] = task
	}
	assert.Equal(t, archivist.Secret, byID[tasks[0].ID].Confidentiality)
	assert.Equal(t, "completed", byID[tasks[1].ID].Status)
}
