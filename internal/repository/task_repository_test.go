package repository

import (
	"testing"

	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTaskRepoEnv(t *testing.T) (TaskRepository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Organization{},
		&models.Board{},
		&models.Column{},
		&models.Task{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return NewTaskRepository(db), db
}

func seedTask(t *testing.T, repo TaskRepository, boardID uint64, title string, archived bool) *models.Task {
	t.Helper()
	seq, err := repo.NextSeq(boardID)
	require.NoError(t, err)
	task := &models.Task{
		PublicID:       "task_" + title + "0000000000",
		Seq:            seq,
		Title:          title,
		BoardID:        boardID,
		ColumnID:       1,
		OrganizationID: 1,
		Priority:       models.PriorityMedium,
		Archived:       archived,
	}
	require.NoError(t, repo.Create(task))
	return task
}

func TestTaskRepository_SnapshotIsCreationOrderedAndExcludesArchived(t *testing.T) {
	repo, _ := setupTaskRepoEnv(t)

	first := seedTask(t, repo, 1, "aaaaaa", false)
	seedTask(t, repo, 1, "bbbbbb", true)
	third := seedTask(t, repo, 1, "cccccc", false)
	seedTask(t, repo, 2, "dddddd", false) // other board

	snapshot, err := repo.Snapshot(1)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, first.ID, snapshot[0].ID)
	assert.Equal(t, third.ID, snapshot[1].ID)
}

func TestTaskRepository_NextSeqCountsSoftDeletedRows(t *testing.T) {
	repo, db := setupTaskRepoEnv(t)

	seedTask(t, repo, 1, "aaaaaa", false)
	second := seedTask(t, repo, 1, "bbbbbb", false)

	// Soft-deleting a task must not free its sequence number for
	// reuse; external references would silently rebind.
	require.NoError(t, db.Delete(&models.Task{}, second.ID).Error)

	seq, err := repo.NextSeq(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), seq)
}

func TestTaskRepository_NextSeqStartsAtOne(t *testing.T) {
	repo, _ := setupTaskRepoEnv(t)

	seq, err := repo.NextSeq(42)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
}

func TestTaskRepository_MaxPositionIgnoresArchived(t *testing.T) {
	repo, db := setupTaskRepoEnv(t)

	a := seedTask(t, repo, 1, "aaaaaa", false)
	a.Position = 3
	require.NoError(t, repo.Update(a))

	b := seedTask(t, repo, 1, "bbbbbb", true)
	b.Position = 9
	require.NoError(t, db.Save(b).Error)

	max, err := repo.MaxPosition(1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, max)

	max, err = repo.MaxPosition(99)
	require.NoError(t, err)
	assert.Equal(t, 0.0, max)
}

func TestTaskRepository_FindByPublicIDIsTenantScoped(t *testing.T) {
	repo, db := setupTaskRepoEnv(t)

	task := seedTask(t, repo, 1, "aaaaaa", false)

	found, err := repo.FindByPublicID(1, task.PublicID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, found.ID)

	_, err = repo.FindByPublicID(2, task.PublicID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, db.Error)
}
