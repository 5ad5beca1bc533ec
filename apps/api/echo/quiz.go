package echoapi

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ispeaktu/backend/core"
	"github.com/ispeaktu/backend/core/catalog"
	"github.com/ispeaktu/backend/core/progress"
	"github.com/ispeaktu/backend/core/quiz"
)

// quizApi keeps the in-flight sessions server-side: the client only ever
// submits option indices, scoring stays with the session state machine.
type quizApi struct {
	deps ServerDeps

	mu       sync.Mutex
	sessions map[string]*quiz.Session
}

func registerQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := &quizApi{
		deps:     deps,
		sessions: make(map[string]*quiz.Session),
	}

	qg := g.Group("/quiz/sessions", jwt)
	qg.POST("", api.start)
	qg.GET("/:id", api.retrieve)
	qg.POST("/:id/select", api.selectOption)
	qg.POST("/:id/check", api.check)
	qg.POST("/:id/advance", api.advance)
}

type (
	StartSessionRequest struct {
		MaterialID string `json:"material_id" validate:"required"`
		// LessonID starts a regular lesson attempt; Block starts the mastery
		// review gating the block that begins at that lesson count.
		LessonID string `json:"lesson_id" validate:"required_without=Block"`
		Block    int    `json:"block"`
	}

	SessionView struct {
		ID              string        `json:"id"`
		State           quiz.State    `json:"state"`
		MaterialID      string        `json:"material_id"`
		LessonID        string        `json:"lesson_id"`
		LessonTitle     string        `json:"lesson_title"`
		IsMasteryReview bool          `json:"is_mastery_review"`
		QuestionIndex   int           `json:"question_index"`
		TotalQuestions  int           `json:"total_questions"`
		Selected        int           `json:"selected"`
		Question        *QuestionView `json:"question,omitempty"`
	}

	CheckAnswerResponse struct {
		Feedback quiz.Feedback `json:"feedback"`
		Session  SessionView   `json:"session"`
	}

	CompletionResponse struct {
		Completed bool            `json:"completed"`
		Record    progress.Record `json:"record"`
		Percent   int             `json:"percent"`
		Tier      quiz.Tier       `json:"tier"`
	}
)

func (r *StartSessionRequest) Validate() error {
	return core.Validate.Struct(r)
}

func newSessionView(s *quiz.Session) SessionView {
	view := SessionView{
		ID:              s.ID,
		State:           s.State(),
		MaterialID:      s.MaterialID,
		LessonID:        s.Lesson.ID,
		LessonTitle:     s.Lesson.Title,
		IsMasteryReview: s.Lesson.IsMasteryReview,
		QuestionIndex:   s.Index(),
		TotalQuestions:  len(s.Lesson.Questions),
		Selected:        s.Selected(),
	}
	if s.State() != quiz.StateCompleted {
		q := s.Question()
		view.Question = &QuestionView{ID: q.ID, Text: q.Text, Options: q.Options, OrderIndex: q.OrderIndex}
	}
	return view
}

func (api *quizApi) start(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data StartSessionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StartSessionRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	mat, err := api.deps.CatalogSvc.Get(reqCtx, data.MaterialID)
	if err != nil {
		return err
	}
	records, err := api.deps.ProgressSvc.QueryAll(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}

	var lesson catalog.Lesson
	if data.Block > 0 {
		if data.Block%progress.BlockSize != 0 || data.Block > len(mat.Lessons) {
			return core.NewValidationError(nil,
				core.FieldError{Field: "block", Error: "not a mastery review boundary"})
		}
		lesson, err = quiz.GenerateReview(mat.Lessons, data.Block, api.deps.QuizRand)
		if err != nil {
			return err
		}
	} else {
		index := -1
		for i, les := range mat.Lessons {
			if les.ID == data.LessonID {
				index = i
				break
			}
		}
		if index < 0 {
			return errHttpNotFound
		}
		if lock := progress.LessonLock(index, claims.Subject, records); lock.Locked {
			return ctx.JSON(http.StatusConflict, lock)
		}
		lesson = mat.Lessons[index]
	}

	sess, err := quiz.NewSession(claims.Subject, claims.Name, mat.ID, lesson)
	if err != nil {
		return err
	}

	// starting the quiz resolves any pending reminder for this lesson
	if err := api.deps.ReminderSvc.ClearForLesson(reqCtx, claims.Subject, lesson.ID); err != nil {
		api.deps.Logger.Warn("clearing reminder on quiz start failed", err)
	}

	api.mu.Lock()
	api.sessions[sess.ID] = sess
	api.mu.Unlock()

	return ctx.JSON(http.StatusCreated, newSessionView(sess))
}

// session fetches the caller's session; foreign sessions are hidden.
func (api *quizApi) session(ctx echo.Context) (*quiz.Session, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil, err
	}

	api.mu.Lock()
	sess, ok := api.sessions[ctx.Param("id")]
	api.mu.Unlock()
	if !ok || sess.StudentID != claims.Subject {
		return nil, errHttpNotFound
	}
	return sess, nil
}

func (api *quizApi) retrieve(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	return ctx.JSON(http.StatusOK, newSessionView(sess))
}

func (api *quizApi) selectOption(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}

	var data struct {
		OptionIndex int `json:"option_index"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to option selection")
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if err := sess.Select(data.OptionIndex); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newSessionView(sess))
}

func (api *quizApi) check(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	feedback, err := sess.CheckAnswer()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CheckAnswerResponse{Feedback: feedback, Session: newSessionView(sess)})
}

func (api *quizApi) advance(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	done, err := sess.Advance()
	if err != nil {
		return err
	}
	if !done {
		return ctx.JSON(http.StatusOK, newSessionView(sess))
	}

	rec, err := sess.Result()
	if err != nil {
		return err
	}
	saved, err := api.deps.ProgressSvc.SaveAttempt(ctx.Request().Context(), rec)
	if err != nil {
		return errors.Wrap(err, "saving attempt")
	}

	percent, err := sess.Percent()
	if err != nil {
		return err
	}
	tier, err := quiz.TierFor(percent)
	if err != nil {
		return err
	}

	delete(api.sessions, sess.ID)

	return ctx.JSON(http.StatusOK, CompletionResponse{
		Completed: true,
		Record:    saved,
		Percent:   percent,
		Tier:      tier,
	})
}
