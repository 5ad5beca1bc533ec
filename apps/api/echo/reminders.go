package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ispeaktu/backend/core/catalog"
	"github.com/ispeaktu/backend/core/reminder"
	"github.com/ispeaktu/backend/core/user"
)

type reminderApi struct {
	svc        *reminder.Service
	catalogSvc *catalog.Service
	userSvc    *user.Service
}

func registerReminderAPI(
	g *echo.Group,
	jwt, teacher echo.MiddlewareFunc,
	svc *reminder.Service,
	catalogSvc *catalog.Service,
	userSvc *user.Service,
) {
	api := reminderApi{svc: svc, catalogSvc: catalogSvc, userSvc: userSvc}

	rg := g.Group("/reminders", jwt)
	rg.GET("", api.own)

	// teacher-only
	rg.POST("", api.send, teacher)
	rg.DELETE("/:studentID/:lessonID", api.cancel, teacher)
}

type SendReminderRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	LessonID   string `json:"lesson_id" validate:"required"`
	MaterialID string `json:"material_id" validate:"required"`
}

func (api *reminderApi) own(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	rems, err := api.svc.ForStudent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying reminders")
	}
	if rems == nil {
		rems = []reminder.Reminder{}
	}
	return ctx.JSON(http.StatusOK, rems)
}

func (api *reminderApi) send(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data SendReminderRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendReminderRequest")
	}

	reqCtx := ctx.Request().Context()

	// resolve lesson title for the notification email; tolerate students
	// without an email address
	var lessonTitle string
	if mat, err := api.catalogSvc.Get(reqCtx, data.MaterialID); err == nil {
		for _, les := range mat.Lessons {
			if les.ID == data.LessonID {
				lessonTitle = les.Title
				break
			}
		}
	}
	var studentEmail string
	if usr, err := api.userSvc.GetByID(reqCtx, data.StudentID); err == nil {
		studentEmail = usr.Email
	}

	rem, err := api.svc.Send(reqCtx, reminder.Reminder{
		StudentID:  data.StudentID,
		LessonID:   data.LessonID,
		MaterialID: data.MaterialID,
		SentBy:     claims.Subject,
	}, lessonTitle, studentEmail)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rem)
}

func (api *reminderApi) cancel(ctx echo.Context) error {
	err := api.svc.Cancel(ctx.Request().Context(), ctx.Param("studentID"), ctx.Param("lessonID"))
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
