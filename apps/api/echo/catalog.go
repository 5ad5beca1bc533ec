package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ispeaktu/backend/core/catalog"
	"github.com/ispeaktu/backend/core/progress"
)

type catalogApi struct {
	svc         *catalog.Service
	progressSvc *progress.Service
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *catalog.Service, progressSvc *progress.Service) {
	api := catalogApi{svc: svc, progressSvc: progressSvc}

	cg := g.Group("/catalog", jwt)
	cg.GET("", api.query)
	cg.GET("/materials/:id", api.retrieve)
}

type (
	// QuestionView strips the answer key: students only ever learn the
	// correct option through the session check endpoint.
	QuestionView struct {
		ID         string   `json:"id"`
		Text       string   `json:"text"`
		Options    []string `json:"options"`
		OrderIndex int      `json:"order_index"`
	}

	LessonView struct {
		ID            string              `json:"id"`
		Title         string              `json:"title"`
		OrderIndex    int                 `json:"order_index"`
		QuestionCount int                 `json:"question_count"`
		Questions     []QuestionView      `json:"questions"`
		Lock          progress.LockStatus `json:"lock"`
	}

	MaterialView struct {
		ID          string       `json:"id"`
		Name        string       `json:"name"`
		Description string       `json:"description"`
		OrderIndex  int          `json:"order_index"`
		Lessons     []LessonView `json:"lessons"`
	}
)

func newMaterialView(mat catalog.Material, studentID string, records []progress.Record) MaterialView {
	view := MaterialView{
		ID:          mat.ID,
		Name:        mat.Name,
		Description: mat.Description,
		OrderIndex:  mat.OrderIndex,
		Lessons:     make([]LessonView, len(mat.Lessons)),
	}
	for i, les := range mat.Lessons {
		questions := make([]QuestionView, len(les.Questions))
		for j, q := range les.Questions {
			questions[j] = QuestionView{ID: q.ID, Text: q.Text, Options: q.Options, OrderIndex: q.OrderIndex}
		}
		view.Lessons[i] = LessonView{
			ID:            les.ID,
			Title:         les.Title,
			OrderIndex:    les.OrderIndex,
			QuestionCount: len(les.Questions),
			Questions:     questions,
			Lock:          progress.LessonLock(i, studentID, records),
		}
	}
	return view
}

// query returns the normalized curriculum with each lesson's gate state
// derived for the requesting student.
func (api *catalogApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	mats, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying curriculum")
	}
	records, err := api.progressSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}

	views := make([]MaterialView, len(mats))
	for i, mat := range mats {
		views[i] = newMaterialView(mat, claims.Subject, records)
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *catalogApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	mat, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	records, err := api.progressSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	return ctx.JSON(http.StatusOK, newMaterialView(mat, claims.Subject, records))
}
