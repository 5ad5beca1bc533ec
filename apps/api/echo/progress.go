package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ispeaktu/backend/core/catalog"
	"github.com/ispeaktu/backend/core/progress"
	"github.com/ispeaktu/backend/core/user"
)

type progressApi struct {
	svc        *progress.Service
	catalogSvc *catalog.Service
	userSvc    *user.Service
}

func registerProgressAPI(
	g *echo.Group,
	jwt, teacher echo.MiddlewareFunc,
	svc *progress.Service,
	catalogSvc *catalog.Service,
	userSvc *user.Service,
) {
	api := progressApi{svc: svc, catalogSvc: catalogSvc, userSvc: userSvc}

	pg := g.Group("/progress", jwt)
	pg.GET("", api.own)
	pg.GET("/dashboard", api.dashboard)

	// teacher-only
	pg.GET("/students", api.students, teacher)
	pg.POST("/:id/verify", api.verify, teacher)

	g.GET("/analytics/failure-rates", api.failureRates, jwt, teacher)
}

type (
	MaterialProgress struct {
		MaterialID string `json:"material_id"`
		Name       string `json:"name"`
		Completion int    `json:"completion"`
	}

	DashboardResponse struct {
		Materials     []MaterialProgress `json:"materials"`
		AverageScore  int                `json:"average_score"`
		Rank          int                `json:"rank"`
		TotalStudents int                `json:"total_students"`
		QuizzesTaken  int                `json:"quizzes_taken"`
	}
)

func (api *progressApi) own(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	recs, err := api.svc.ForStudent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying student progress")
	}
	if recs == nil {
		recs = []progress.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

// dashboard derives the student's headline numbers from the full progress
// collection: per-material completion, average score, leaderboard rank and
// quizzes taken.
func (api *progressApi) dashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	records, err := api.svc.QueryAll(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	mats, err := api.catalogSvc.Query(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying curriculum")
	}

	materials := make([]MaterialProgress, len(mats))
	for i, mat := range mats {
		materials[i] = MaterialProgress{
			MaterialID: mat.ID,
			Name:       mat.Name,
			Completion: progress.MaterialCompletion(mat, records, claims.Subject),
		}
	}
	rank, total := progress.LeaderboardRank(records, claims.Subject)

	return ctx.JSON(http.StatusOK, DashboardResponse{
		Materials:     materials,
		AverageScore:  progress.AverageScore(records, claims.Subject),
		Rank:          rank,
		TotalStudents: total,
		QuizzesTaken:  progress.TotalQuizzesTaken(records, claims.Subject),
	})
}

// students lists every student's records for the teacher view; ?q= filters
// by student name.
func (api *progressApi) students(ctx echo.Context) error {
	records, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}

	if q := strings.TrimSpace(ctx.QueryParam("q")); q != "" {
		q = strings.ToLower(q)
		filtered := make([]progress.Record, 0, len(records))
		for _, rec := range records {
			if strings.Contains(strings.ToLower(rec.StudentName), q) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}
	if records == nil {
		records = []progress.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *progressApi) verify(ctx echo.Context) error {
	rec, err := api.svc.Verify(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) failureRates(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	records, err := api.svc.QueryAll(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	mats, err := api.catalogSvc.Query(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying curriculum")
	}

	rates := progress.FailureRates(records, mats)
	if rates == nil {
		rates = []progress.LessonFailure{}
	}
	return ctx.JSON(http.StatusOK, rates)
}
