package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const testID = "0b8f5c8e-7c1e-4a53-9a55-3f1c1f0d9a11"

var accountCols = []string{"id", "name", "email", "password_hash", "role", "verified", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*name,\s*email,\s*password_hash,\s*role,\s*verified\)\s*VALUES\s*\(\$1,.*\$6\)\s*RETURNING\s+created_at,\s*updated_at\s*$`

	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs(sqlmock.AnyArg(), "Ann", "ann@example.com", "hash", "user", false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	a := &models.Account{Name: "Ann", Email: "ann@example.com", PasswordHash: "hash", Role: models.RoleUser}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if a.ID == "" || !a.CreatedAt.Equal(now) {
		t.Fatalf("unexpected account: %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := repo.Create(context.Background(), &models.Account{Email: "ann@example.com", Role: models.RoleUser})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Account{Role: models.RoleUser})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+lower\(email\)\s*=\s*lower\(\$1\)\s*$`

	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(testID, "Ann", "ann@example.com", "hash", "admin", true, now, now))

	got, err := repo.FindByEmail(context.Background(), "ann@example.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.ID != testID || got.Role != models.RoleAdmin || !got.Verified || got.PasswordHash != "hash" {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+users`).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByID_InvalidUUIDIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestFindByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE\s+id\s*=\s*\$1`).WithArgs(testID).WillReturnError(errors.New("db err"))

	_, err := repo.FindByID(context.Background(), testID)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByIDs(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	other := "5d2c1c0e-2f8b-4a8e-8f4e-8a3a9b1f2c33"
	now := time.Now()
	mock.ExpectQuery(`WHERE\s+id\s+IN\s+\(\$1,\s*\$2\)`).
		WithArgs(testID, other).
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(testID, "Ann", "ann@example.com", "h", "user", false, now, now))

	got, err := repo.FindByIDs(context.Background(), []string{testID, "bogus", other})
	if err != nil {
		t.Fatalf("FindByIDs error: %v", err)
	}
	if len(got) != 1 || got[testID] == nil {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestSave(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+name\s*=\s*\$2,.*WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs(testID, "Ann", "ann@example.com", "hash", "user", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	a := &models.Account{ID: testID, Name: "Ann", Email: "ann@example.com", PasswordHash: "hash", Role: models.RoleUser, Verified: true}
	if err := repo.Save(context.Background(), a); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if a.UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt not set")
	}
}

func TestSave_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+users`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), &models.Account{ID: testID, Role: models.RoleUser})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)FROM\s+users\s+ORDER\s+BY\s+created_at`).
		WillReturnRows(sqlmock.NewRows(accountCols).
			AddRow(testID, "Ann", "ann@example.com", "h", "admin", true, now, now).
			AddRow("5d2c1c0e-2f8b-4a8e-8f4e-8a3a9b1f2c33", "Bob", "bob@example.com", "h", "user", false, now, now))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[1].Name != "Bob" {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestUpdateRole(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)UPDATE\s+users\s+SET\s+role\s*=\s*\$2.*RETURNING`).
		WithArgs(testID, "admin").
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(testID, "Ann", "ann@example.com", "h", "admin", false, now, now))

	got, err := repo.UpdateRole(context.Background(), testID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole error: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Fatalf("unexpected role: %s", got.Role)
	}
}

func TestUpdateRole_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+users`).WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateRole(context.Background(), testID, models.RoleAdmin)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
