package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/class"
)

const templateColumns = "id, school_class_id, subjects_part1, subjects_part2, created_at, updated_at"

type classRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func (r classRow) class() class.SchoolClass {
	return class.SchoolClass{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt.UTC()}
}

// templateRow stores the sections as comma separated lists.
type templateRow struct {
	ID        string    `db:"id"`
	ClassID   string    `db:"school_class_id"`
	Part1     string    `db:"subjects_part1"`
	Part2     string    `db:"subjects_part2"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func toTemplateRow(tmpl class.Template) templateRow {
	return templateRow{
		ID:        tmpl.ID,
		ClassID:   tmpl.ClassID,
		Part1:     core.JoinList(tmpl.Part1),
		Part2:     core.JoinList(tmpl.Part2),
		CreatedAt: tmpl.CreatedAt.UTC(),
		UpdatedAt: tmpl.UpdatedAt.UTC(),
	}
}

func (r templateRow) template() class.Template {
	return class.Template{
		ID:        r.ID,
		ClassID:   r.ClassID,
		Part1:     core.SplitList(r.Part1),
		Part2:     core.SplitList(r.Part2),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type classRepository struct {
	db sqlx.ExtContext
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db sqlx.ExtContext) *classRepository {
	return &classRepository{db: db}
}

func (repo *classRepository) trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// trapTemplateErr maps constraint violations of bulletin_templates to class errors.
func (repo *classRepository) trapTemplateErr(err error, msg string) error {
	switch pqCode(err) {
	case uniqueViolation:
		return class.ErrTemplateExists
	case foreignKeyViolation:
		return class.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *classRepository) CreateClass(ctx context.Context, cls class.SchoolClass) (class.SchoolClass, error) {
	row := classRow{ID: uuid.New().String(), Name: cls.Name, CreatedAt: cls.CreatedAt.UTC()}
	q := `INSERT INTO school_classes (id, name, created_at) VALUES (:id, :name, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, row); err != nil {
		if pqCode(err) == uniqueViolation {
			return class.SchoolClass{}, class.ErrClassExists
		}
		return class.SchoolClass{}, errors.Wrap(err, "inserting class")
	}
	return row.class(), nil
}

func (repo *classRepository) QueryClasses(ctx context.Context) ([]class.SchoolClass, error) {
	var rows []classRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, "SELECT id, name, created_at FROM school_classes ORDER BY name"); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]class.SchoolClass, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.class())
	}
	return classes, nil
}

func (repo *classRepository) GetClass(ctx context.Context, id string) (class.SchoolClass, error) {
	if !isUUID(id) {
		return class.SchoolClass{}, class.ErrNotFound
	}
	var row classRow
	q := repo.db.Rebind("SELECT id, name, created_at FROM school_classes WHERE id = ?")
	if err := sqlx.GetContext(ctx, repo.db, &row, q, id); err != nil {
		return class.SchoolClass{}, repo.trapNoRowsErr(err, class.ErrNotFound, "getting class")
	}
	return row.class(), nil
}

func (repo *classRepository) GetClassByName(ctx context.Context, name string) (class.SchoolClass, error) {
	var row classRow
	q := repo.db.Rebind("SELECT id, name, created_at FROM school_classes WHERE name = ?")
	if err := sqlx.GetContext(ctx, repo.db, &row, q, name); err != nil {
		return class.SchoolClass{}, repo.trapNoRowsErr(err, class.ErrNotFound, "getting class by name")
	}
	return row.class(), nil
}

func (repo *classRepository) CreateTemplate(ctx context.Context, tmpl class.Template) (class.Template, error) {
	if !isUUID(tmpl.ClassID) {
		return class.Template{}, class.ErrNotFound
	}
	tmpl.ID = uuid.New().String()
	row := toTemplateRow(tmpl)
	q := `INSERT INTO bulletin_templates (` + templateColumns + `)
		VALUES (:id, :school_class_id, :subjects_part1, :subjects_part2, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, row); err != nil {
		return class.Template{}, repo.trapTemplateErr(err, "inserting template")
	}
	return row.template(), nil
}

func (repo *classRepository) UpdateTemplate(ctx context.Context, tmpl class.Template) (class.Template, error) {
	if !isUUID(tmpl.ID) || !isUUID(tmpl.ClassID) {
		return class.Template{}, class.ErrTemplateNotFound
	}
	q := `UPDATE bulletin_templates SET
			school_class_id = :school_class_id,
			subjects_part1 = :subjects_part1,
			subjects_part2 = :subjects_part2,
			updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db, q, toTemplateRow(tmpl))
	if err != nil {
		return class.Template{}, repo.trapTemplateErr(err, "updating template")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return class.Template{}, class.ErrTemplateNotFound
	}
	return repo.GetTemplate(ctx, tmpl.ID)
}

func (repo *classRepository) DeleteTemplate(ctx context.Context, id string) error {
	if !isUUID(id) {
		return class.ErrTemplateNotFound
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM bulletin_templates WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting template")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return class.ErrTemplateNotFound
	}
	return nil
}

func (repo *classRepository) getTemplate(ctx context.Context, column, value string) (class.Template, error) {
	if !isUUID(value) {
		return class.Template{}, class.ErrTemplateNotFound
	}
	var row templateRow
	q := repo.db.Rebind("SELECT " + templateColumns + " FROM bulletin_templates WHERE " + column + " = ?")
	if err := sqlx.GetContext(ctx, repo.db, &row, q, value); err != nil {
		return class.Template{}, repo.trapNoRowsErr(err, class.ErrTemplateNotFound, "getting template")
	}
	return row.template(), nil
}

func (repo *classRepository) GetTemplate(ctx context.Context, id string) (class.Template, error) {
	return repo.getTemplate(ctx, "id", id)
}

func (repo *classRepository) GetTemplateByClass(ctx context.Context, classID string) (class.Template, error) {
	return repo.getTemplate(ctx, "school_class_id", classID)
}

func (repo *classRepository) QueryTemplates(ctx context.Context) ([]class.Template, error) {
	var rows []templateRow
	q := "SELECT " + templateColumns + " FROM bulletin_templates ORDER BY created_at, id"
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying templates")
	}
	templates := make([]class.Template, 0, len(rows))
	for _, r := range rows {
		templates = append(templates, r.template())
	}
	return templates, nil
}
