package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/ispeaktu/backend/core"
	"github.com/ispeaktu/backend/core/catalog"
	"github.com/ispeaktu/backend/core/progress"
	"github.com/ispeaktu/backend/core/quiz"
	"github.com/ispeaktu/backend/core/reminder"
	"github.com/ispeaktu/backend/core/user"
	emailsvc "github.com/ispeaktu/backend/services/email"
	dummydb "github.com/ispeaktu/backend/storage/database/dummy"
)

func TestMain(m *testing.M) {
	core.InitValidators()
	os.Exit(m.Run())
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	srv         *server
	conf        *core.Config
	userSvc     *user.Service
	catalogSvc  *catalog.Service
	progressSvc *progress.Service
	reminderSvc *reminder.Service
}

func setup(t *testing.T) *testEnv {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}

	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.SecretKey = []byte("test-secret")

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	logger := nopLogger{}

	env := &testEnv{
		conf:        conf,
		userSvc:     user.NewService(dummydb.NewUserRepository(db)),
		catalogSvc:  catalog.NewService(dummydb.NewCatalogRepository(db), nil, logger),
		progressSvc: progress.NewService(dummydb.NewProgressRepository(db), nil, logger),
		reminderSvc: reminder.NewService(dummydb.NewReminderRepository(db), mailSvc, nil, logger),
	}
	env.srv = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		UserSvc:        env.userSvc,
		CatalogSvc:     env.catalogSvc,
		ProgressSvc:    env.progressSvc,
		ReminderSvc:    env.reminderSvc,
		QuizRand:       rand.New(rand.NewSource(1)),
		DisableReqLogs: true,
	}).(*server)
	return env
}

// seedCurriculum imports one material with n single-question lessons.
func (env *testEnv) seedCurriculum(t *testing.T, lessons int) {
	mat := catalog.Material{ID: "m1", Name: "French Basics"}
	for i := 1; i <= lessons; i++ {
		mat.Lessons = append(mat.Lessons, catalog.Lesson{
			ID:         fmt.Sprintf("l%d", i),
			MaterialID: "m1",
			Title:      fmt.Sprintf("Lesson %d", i),
			OrderIndex: i - 1,
			Questions: []catalog.Question{{
				ID:            fmt.Sprintf("l%d_q1", i),
				LessonID:      fmt.Sprintf("l%d", i),
				Text:          "pick the right one",
				Options:       []string{"right", "wrong"},
				CorrectOption: "right",
				Feedback:      "it was right",
			}},
		})
	}
	if err := env.catalogSvc.Import(context.Background(), mat); err != nil {
		t.Fatalf("seeding curriculum failed, %v", err)
	}
}

func (env *testEnv) newStudent(t *testing.T, name string) (user.User, string) {
	usr, err := env.userSvc.Register(context.Background(), user.NewUser{
		Name: name, Password: "s3cret", PasswordConfirm: "s3cret",
	})
	if err != nil {
		t.Fatalf("registering %q failed, %v", name, err)
	}
	return usr, env.token(t, usr)
}

func (env *testEnv) newTeacher(t *testing.T, name string) (user.User, string) {
	usr, _ := env.newStudent(t, name)
	usr, err := env.userSvc.GrantTeacher(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("granting teacher failed, %v", err)
	}
	return usr, env.token(t, usr)
}

func (env *testEnv) token(t *testing.T, usr user.User) string {
	token, err := env.srv.auth.generateToken(env.srv.auth.claims(usr))
	if err != nil {
		t.Fatalf("generating token failed, %v", err)
	}
	return token
}

func (env *testEnv) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decoding response %q failed, %v", rec.Body.String(), err)
	}
}

func Test_userApi(t *testing.T) {
	env := setup(t)

	t.Run("register", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/users/register", "", echoMap{
			"name": "Jane Doe", "password": "s3cret", "password_confirm": "s3cret",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp LoginResponse
		decode(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "user_jane_doe", resp.User.ID)
	})

	t.Run("register duplicate name", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/users/register", "", echoMap{
			"name": " JANE  doe ", "password": "s3cret", "password_confirm": "s3cret",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("register password mismatch", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/users/register", "", echoMap{
			"name": "John", "password": "s3cret", "password_confirm": "other",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/users/login", "", echoMap{
			"name_or_email": "Jane Doe", "password": "s3cret",
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		decode(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.False(t, resp.User.LastLogin.IsZero())
	})

	t.Run("login bad password", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/users/login", "", echoMap{
			"name_or_email": "Jane Doe", "password": "nope",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("me requires auth", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("login hints", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/users/login-hints", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var hints LoginHints
		decode(t, rec, &hints)
		assert.Equal(t, env.conf.TeacherAccessCode, hints.TeacherAccessCode)
	})
}

type echoMap = map[string]interface{}

func Test_catalogApi_lockAnnotations(t *testing.T) {
	env := setup(t)
	env.seedCurriculum(t, 12)
	_, token := env.newStudent(t, "Jane Doe")

	rec := env.request(http.MethodGet, "/v1/catalog", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var views []MaterialView
	decode(t, rec, &views)
	assert.Len(t, views, 1)
	assert.Len(t, views[0].Lessons, 12)

	// first block open, second block gated
	assert.False(t, views[0].Lessons[0].Lock.Locked)
	assert.False(t, views[0].Lessons[9].Lock.Locked)
	assert.True(t, views[0].Lessons[10].Lock.Locked)
	assert.Equal(t, progress.LockReasonReviewRequired, views[0].Lessons[10].Lock.Reason)

	// answer key never leaks through the catalog
	assert.NotContains(t, rec.Body.String(), "correct_option")
}

func Test_quizApi_fullFlow(t *testing.T) {
	env := setup(t)
	env.seedCurriculum(t, 3)
	usr, token := env.newStudent(t, "Jane Doe")

	// a pending reminder for this lesson is cleared by starting the quiz
	_, err := env.reminderSvc.Send(context.Background(), reminder.Reminder{
		StudentID: usr.ID, LessonID: "l1", MaterialID: "m1", SentBy: "user_mr_smith",
	}, "Lesson 1", "")
	assert.NoError(t, err)

	rec := env.request(http.MethodPost, "/v1/quiz/sessions", token, echoMap{
		"material_id": "m1", "lesson_id": "l1",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var sess SessionView
	decode(t, rec, &sess)
	assert.Equal(t, quiz.StateAnswering, sess.State)
	assert.Equal(t, 1, sess.TotalQuestions)
	assert.NotNil(t, sess.Question)
	assert.Equal(t, []string{"right", "wrong"}, sess.Question.Options)

	rems, err := env.reminderSvc.ForStudent(context.Background(), usr.ID)
	assert.NoError(t, err)
	assert.Empty(t, rems)

	base := "/v1/quiz/sessions/" + sess.ID

	// premature check: nothing selected
	rec = env.request(http.MethodPost, base+"/check", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(http.MethodPost, base+"/select", token, echoMap{"option_index": 0})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodPost, base+"/check", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var checked CheckAnswerResponse
	decode(t, rec, &checked)
	assert.True(t, checked.Feedback.IsCorrect)
	assert.Equal(t, "it was right", checked.Feedback.Explanation)

	// double check is rejected
	rec = env.request(http.MethodPost, base+"/check", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.request(http.MethodPost, base+"/advance", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var completion CompletionResponse
	decode(t, rec, &completion)
	assert.True(t, completion.Completed)
	assert.Equal(t, 100, completion.Percent)
	assert.Equal(t, "Proficient", completion.Tier.Name)
	assert.Equal(t, progress.RecordID(usr.ID, "m1", "l1"), completion.Record.ID)
	assert.False(t, completion.Record.Verified)

	// the session is gone once completed
	rec = env.request(http.MethodGet, base, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// the attempt is visible in the student's progress
	rec = env.request(http.MethodGet, "/v1/progress", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var records []progress.Record
	decode(t, rec, &records)
	assert.Len(t, records, 1)
}

func Test_quizApi_lockedLesson(t *testing.T) {
	env := setup(t)
	env.seedCurriculum(t, 12)
	usr, token := env.newStudent(t, "Jane Doe")

	rec := env.request(http.MethodPost, "/v1/quiz/sessions", token, echoMap{
		"material_id": "m1", "lesson_id": "l11",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var lock progress.LockStatus
	decode(t, rec, &lock)
	assert.True(t, lock.Locked)
	assert.Equal(t, progress.LockReasonReviewRequired, lock.Reason)

	// a passed mastery review unlocks the block
	_, err := env.progressSvc.SaveAttempt(context.Background(), progress.Record{
		StudentID: usr.ID, StudentName: usr.Name, MaterialID: "m1",
		LessonID: progress.MasteryReviewLessonID(10), Score: 9, Total: 10,
	})
	assert.NoError(t, err)

	rec = env.request(http.MethodPost, "/v1/quiz/sessions", token, echoMap{
		"material_id": "m1", "lesson_id": "l11",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func Test_quizApi_masteryReview(t *testing.T) {
	env := setup(t)
	env.seedCurriculum(t, 12)
	_, token := env.newStudent(t, "Jane Doe")

	rec := env.request(http.MethodPost, "/v1/quiz/sessions", token, echoMap{
		"material_id": "m1", "block": 10,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var sess SessionView
	decode(t, rec, &sess)
	assert.True(t, sess.IsMasteryReview)
	assert.Equal(t, progress.MasteryReviewLessonID(10), sess.LessonID)
	// two draws per single-question lesson, capped at 20
	assert.Equal(t, 20, sess.TotalQuestions)

	// not a block boundary
	rec = env.request(http.MethodPost, "/v1/quiz/sessions", token, echoMap{
		"material_id": "m1", "block": 7,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_progressApi_teacherEndpoints(t *testing.T) {
	env := setup(t)
	env.seedCurriculum(t, 3)
	student, studentToken := env.newStudent(t, "Jane Doe")
	_, teacherToken := env.newTeacher(t, "Mr Smith")

	passing, err := env.progressSvc.SaveAttempt(context.Background(), progress.Record{
		StudentID: student.ID, StudentName: student.Name, MaterialID: "m1",
		LessonID: "l1", Score: 8, Total: 10,
	})
	assert.NoError(t, err)
	failing, err := env.progressSvc.SaveAttempt(context.Background(), progress.Record{
		StudentID: student.ID, StudentName: student.Name, MaterialID: "m1",
		LessonID: "l2", Score: 3, Total: 10,
	})
	assert.NoError(t, err)

	t.Run("students list is teacher-only", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/progress/students", studentToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.request(http.MethodGet, "/v1/progress/students", teacherToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var records []progress.Record
		decode(t, rec, &records)
		assert.Len(t, records, 2)
	})

	t.Run("students list search", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/progress/students?q=jane", teacherToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var records []progress.Record
		decode(t, rec, &records)
		assert.Len(t, records, 2)

		rec = env.request(http.MethodGet, "/v1/progress/students?q=nobody", teacherToken, nil)
		var none []progress.Record
		decode(t, rec, &none)
		assert.Empty(t, none)
	})

	t.Run("verify", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/progress/"+passing.ID+"/verify", studentToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.request(http.MethodPost, "/v1/progress/"+passing.ID+"/verify", teacherToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var verified progress.Record
		decode(t, rec, &verified)
		assert.True(t, verified.Verified)
	})

	t.Run("verify below threshold", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/progress/"+failing.ID+"/verify", teacherToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "below the 70% mastery threshold")
	})

	t.Run("dashboard", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/progress/dashboard", studentToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var dash DashboardResponse
		decode(t, rec, &dash)
		assert.Len(t, dash.Materials, 1)
		assert.Equal(t, 33, dash.Materials[0].Completion) // 1 of 3 verified
		assert.Equal(t, 55, dash.AverageScore)            // (0.8 + 0.3) / 2
		assert.Equal(t, 1, dash.Rank)
		assert.Equal(t, 1, dash.TotalStudents)
		assert.Equal(t, 1, dash.QuizzesTaken)
	})

	t.Run("failure rates", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/analytics/failure-rates", studentToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.request(http.MethodGet, "/v1/analytics/failure-rates", teacherToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var report []progress.LessonFailure
		decode(t, rec, &report)
		assert.Len(t, report, 2)
		assert.Equal(t, "l2", report[0].LessonID)
		assert.Equal(t, 1.0, report[0].FailureRate)
	})
}

func Test_reminderApi(t *testing.T) {
	env := setup(t)
	env.seedCurriculum(t, 3)
	student, studentToken := env.newStudent(t, "Jane Doe")
	_, teacherToken := env.newTeacher(t, "Mr Smith")

	body := echoMap{"student_id": student.ID, "lesson_id": "l1", "material_id": "m1"}

	t.Run("send is teacher-only", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/reminders", studentToken, body)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.request(http.MethodPost, "/v1/reminders", teacherToken, body)
		assert.Equal(t, http.StatusCreated, rec.Code)
		var rem reminder.Reminder
		decode(t, rec, &rem)
		assert.Equal(t, reminder.ReminderID(student.ID, "l1"), rem.ID)
		assert.Equal(t, "user_mr_smith", rem.SentBy)
	})

	t.Run("student sees own reminders", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/reminders", studentToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var rems []reminder.Reminder
		decode(t, rec, &rems)
		assert.Len(t, rems, 1)
	})

	t.Run("cancel", func(t *testing.T) {
		path := "/v1/reminders/" + student.ID + "/l1"
		rec := env.request(http.MethodDelete, path, teacherToken, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.request(http.MethodDelete, path, teacherToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
