package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/grade"
	"github.com/trezcool/bulletin/core/user"
)

const gradeColumns = "g.id, g.student_id, g.subject, g.moy_cl, g.n_compo, g.coef, g.period, g.created_at, g.updated_at"

var defaultGradeOrdering = []core.DBOrdering{
	{Field: "subject", Ascending: true},
	{Field: "created_at", Ascending: true},
	{Field: "id", Ascending: true},
}

type gradeRow struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	Subject     string    `db:"subject"`
	ClassAvg    float64   `db:"moy_cl"`
	Composition float64   `db:"n_compo"`
	Coef        int       `db:"coef"`
	Period      string    `db:"period"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func toGradeRow(e grade.Entry) gradeRow {
	return gradeRow{
		ID:          e.ID,
		StudentID:   e.StudentID,
		Subject:     e.Subject,
		ClassAvg:    e.ClassAvg,
		Composition: e.Composition,
		Coef:        e.Coef,
		Period:      e.Period,
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   e.UpdatedAt.UTC(),
	}
}

func (r gradeRow) entry() grade.Entry {
	return grade.Entry{
		ID:          r.ID,
		StudentID:   r.StudentID,
		Subject:     r.Subject,
		ClassAvg:    r.ClassAvg,
		Composition: r.Composition,
		Coef:        r.Coef,
		Period:      r.Period,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type gradeRepository struct {
	db sqlx.ExtContext
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db sqlx.ExtContext) *gradeRepository {
	return &gradeRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to grade.ErrNotFound
func (repo *gradeRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return grade.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *gradeRepository) CreateEntry(ctx context.Context, e grade.Entry) (grade.Entry, error) {
	if !isUUID(e.StudentID) {
		return grade.Entry{}, user.ErrNotFound
	}
	e.ID = uuid.New().String()
	row := toGradeRow(e)
	q := `INSERT INTO grades (id, student_id, subject, moy_cl, n_compo, coef, period, created_at, updated_at)
		VALUES (:id, :student_id, :subject, :moy_cl, :n_compo, :coef, :period, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, row); err != nil {
		if pqCode(err) == foreignKeyViolation {
			return grade.Entry{}, user.ErrNotFound
		}
		return grade.Entry{}, errors.Wrap(err, "inserting grade")
	}
	return row.entry(), nil
}

func (repo *gradeRepository) GetEntry(ctx context.Context, id string) (grade.Entry, error) {
	if !isUUID(id) {
		return grade.Entry{}, grade.ErrNotFound
	}
	var row gradeRow
	q := repo.db.Rebind("SELECT " + gradeColumns + " FROM grades g WHERE g.id = ?")
	if err := sqlx.GetContext(ctx, repo.db, &row, q, id); err != nil {
		return grade.Entry{}, repo.trapNoRowsErr(err, "getting grade")
	}
	return row.entry(), nil
}

func (repo *gradeRepository) QueryEntries(ctx context.Context, filter *grade.QueryFilter, ordering []core.DBOrdering) ([]grade.Entry, error) {
	from := " FROM grades g"
	var w where
	if filter != nil {
		if filter.StudentID != "" {
			if !isUUID(filter.StudentID) {
				return []grade.Entry{}, nil
			}
			w.add("g.student_id = ?", filter.StudentID)
		}
		if filter.ClassID != "" {
			if !isUUID(filter.ClassID) {
				return []grade.Entry{}, nil
			}
			from += " JOIN users u ON u.id = g.student_id"
			w.add("u.class_id = ?", filter.ClassID)
		}
		if filter.Period != "" {
			w.add("g.period = ?", filter.Period)
		}
		if filter.Subject != "" {
			w.add("g.subject = ?", filter.Subject)
		}
	}

	var rows []gradeRow
	q := repo.db.Rebind("SELECT " + gradeColumns + from + w.String() + orderBy("g", ordering, defaultGradeOrdering...))
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	entries := make([]grade.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

func (repo *gradeRepository) UpdateEntry(ctx context.Context, e grade.Entry) (grade.Entry, error) {
	if !isUUID(e.ID) {
		return grade.Entry{}, grade.ErrNotFound
	}
	q := `UPDATE grades SET
			subject = :subject,
			moy_cl = :moy_cl,
			n_compo = :n_compo,
			coef = :coef,
			period = :period,
			updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db, q, toGradeRow(e))
	if err != nil {
		return grade.Entry{}, errors.Wrap(err, "updating grade")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grade.Entry{}, grade.ErrNotFound
	}
	return repo.GetEntry(ctx, e.ID)
}

func (repo *gradeRepository) DeleteEntry(ctx context.Context, id string) error {
	if !isUUID(id) {
		return grade.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM grades WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grade.ErrNotFound
	}
	return nil
}

// latest returns the most recent grade of a student, if any.
func (repo *gradeRepository) latest(ctx context.Context, studentID string) ([]grade.Entry, error) {
	if !isUUID(studentID) {
		return nil, nil
	}
	var rows []gradeRow
	q := repo.db.Rebind("SELECT " + gradeColumns + " FROM grades g WHERE g.student_id = ?" +
		orderBy("g", []core.DBOrdering{{Field: "created_at"}, {Field: "id"}}) + " LIMIT 1")
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "getting latest grade")
	}
	entries := make([]grade.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}
