package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ispeaktu/backend/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

type questionRow struct {
	ID            string `db:"id"`
	LessonID      string `db:"lesson_id"`
	Text          string `db:"text"`
	Options       []byte `db:"options"`
	CorrectOption string `db:"correct_option"`
	Feedback      string `db:"feedback"`
	OrderIndex    int    `db:"order_index"`
}

func (row questionRow) toQuestion() (catalog.Question, error) {
	q := catalog.Question{
		ID:            row.ID,
		LessonID:      row.LessonID,
		Text:          row.Text,
		CorrectOption: row.CorrectOption,
		Feedback:      row.Feedback,
		OrderIndex:    row.OrderIndex,
	}
	if err := json.Unmarshal(row.Options, &q.Options); err != nil {
		return catalog.Question{}, errors.Wrapf(err, "decoding options of question %s", row.ID)
	}
	return q, nil
}

func (repo *catalogRepository) QueryCurriculum(ctx context.Context) ([]catalog.Material, error) {
	var mats []catalog.Material
	err := repo.db.SelectContext(ctx, &mats,
		"SELECT id, name, description, order_index FROM materials ORDER BY order_index")
	if err != nil {
		return nil, unavailable(err, "querying materials")
	}

	var lessons []catalog.Lesson
	err = repo.db.SelectContext(ctx, &lessons,
		"SELECT id, material_id, title, order_index FROM lessons ORDER BY material_id, order_index")
	if err != nil {
		return nil, unavailable(err, "querying lessons")
	}

	var qRows []questionRow
	err = repo.db.SelectContext(ctx, &qRows,
		"SELECT id, lesson_id, text, options, correct_option, feedback, order_index FROM questions ORDER BY lesson_id, order_index")
	if err != nil {
		return nil, unavailable(err, "querying questions")
	}

	questionsByLesson := make(map[string][]catalog.Question)
	for _, row := range qRows {
		q, qErr := row.toQuestion()
		if qErr != nil {
			return nil, qErr
		}
		questionsByLesson[q.LessonID] = append(questionsByLesson[q.LessonID], q)
	}

	lessonsByMaterial := make(map[string][]catalog.Lesson)
	for _, les := range lessons {
		les.Questions = questionsByLesson[les.ID]
		lessonsByMaterial[les.MaterialID] = append(lessonsByMaterial[les.MaterialID], les)
	}

	for i := range mats {
		mats[i].Lessons = lessonsByMaterial[mats[i].ID]
	}
	return mats, nil
}

func (repo *catalogRepository) GetMaterial(ctx context.Context, id string) (catalog.Material, error) {
	var mat catalog.Material
	err := repo.db.GetContext(ctx, &mat,
		"SELECT id, name, description, order_index FROM materials WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return catalog.Material{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Material{}, unavailable(err, "getting material")
	}

	err = repo.db.SelectContext(ctx, &mat.Lessons,
		"SELECT id, material_id, title, order_index FROM lessons WHERE material_id = $1 ORDER BY order_index", id)
	if err != nil {
		return catalog.Material{}, unavailable(err, "querying lessons")
	}

	var qRows []questionRow
	err = repo.db.SelectContext(ctx, &qRows,
		`SELECT q.id, q.lesson_id, q.text, q.options, q.correct_option, q.feedback, q.order_index
		 FROM questions q JOIN lessons l ON q.lesson_id = l.id
		 WHERE l.material_id = $1 ORDER BY q.lesson_id, q.order_index`, id)
	if err != nil {
		return catalog.Material{}, unavailable(err, "querying questions")
	}

	questionsByLesson := make(map[string][]catalog.Question)
	for _, row := range qRows {
		q, qErr := row.toQuestion()
		if qErr != nil {
			return catalog.Material{}, qErr
		}
		questionsByLesson[q.LessonID] = append(questionsByLesson[q.LessonID], q)
	}
	for i := range mat.Lessons {
		mat.Lessons[i].Questions = questionsByLesson[mat.Lessons[i].ID]
	}
	return mat, nil
}

func (repo *catalogRepository) UpsertMaterial(ctx context.Context, mat catalog.Material) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO materials (id, name, description, order_index)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, description = EXCLUDED.description, order_index = EXCLUDED.order_index`,
		mat.ID, mat.Name, mat.Description, mat.OrderIndex)
	if err != nil {
		return unavailable(err, "upserting material")
	}
	return nil
}

func (repo *catalogRepository) UpsertLesson(ctx context.Context, les catalog.Lesson) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO lessons (id, material_id, title, order_index)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET material_id = EXCLUDED.material_id, title = EXCLUDED.title, order_index = EXCLUDED.order_index`,
		les.ID, les.MaterialID, les.Title, les.OrderIndex)
	if err != nil {
		return unavailable(err, "upserting lesson")
	}
	return nil
}

func (repo *catalogRepository) UpsertQuestion(ctx context.Context, q catalog.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return errors.Wrap(err, "encoding options")
	}
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO questions (id, lesson_id, text, options, correct_option, feedback, order_index)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE
		 SET lesson_id = EXCLUDED.lesson_id, text = EXCLUDED.text, options = EXCLUDED.options,
		     correct_option = EXCLUDED.correct_option, feedback = EXCLUDED.feedback,
		     order_index = EXCLUDED.order_index`,
		q.ID, q.LessonID, q.Text, options, q.CorrectOption, q.Feedback, q.OrderIndex)
	if err != nil {
		return unavailable(err, "upserting question")
	}
	return nil
}
