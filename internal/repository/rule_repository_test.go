package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

// TRIGGER is a reserved word in MySQL. If the column is interpolated
// unquoted the statement is a syntax error and no rule ever fires, so
// the generated SQL must carry the backtick-quoted identifier.
func TestRuleRepository_ListEnabledQuotesTriggerColumn(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRuleRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `automation_rules` WHERE .*`trigger` = \\?.*").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.ListEnabled(1, models.TriggerPROpened, 2)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// RecordTrigger must increment atomically in SQL, not read-modify-write
// in Go, so concurrent rule firings never lose counts.
func TestRuleRepository_RecordTriggerIncrementsInSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRuleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `automation_rules` SET .*`trigger_count`=trigger_count \\+ 1.*").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RecordTrigger(7, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
