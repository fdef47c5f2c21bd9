package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"quiz_app_backend/internal/events"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	*App
	t      *testing.T
	events *events.MockPublisher
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pub := events.NewMockPublisher()
	a := Build(testutil.NewConfig(t), testutil.NewDB(t), nil, &events.Bus{Publisher: pub})
	return &testApp{App: a, t: t, events: pub}
}

func (a *testApp) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (a *testApp) register(name, email string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/register", "", gin.H{"name": name, "email": email, "password": "secret1"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		Token string `json:"token"`
	}](a.t, env.Data).Token
}

func (a *testApp) adminToken() string {
	a.t.Helper()
	_, err := a.services.auth.EnsureAdmin("admin@gmail.com", "123456", "Admin")
	require.NoError(a.t, err)

	w, env := a.do(http.MethodPost, "/api/login", "", gin.H{"email": "admin@gmail.com", "password": "123456"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[struct {
		Token string `json:"token"`
	}](a.t, env.Data).Token
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)

	w, env := a.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, env.Code)
}

func TestAuthRoutes(t *testing.T) {
	a := newTestApp(t)

	token := a.register("An", "an@example.com")
	assert.NotEmpty(t, token)

	w, _ := a.do(http.MethodPost, "/api/register", "", gin.H{"name": "An", "email": "AN@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env := a.do(http.MethodPost, "/api/register", "", gin.H{"name": "An", "email": "bad", "password": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, env.Data)

	w, _ = a.do(http.MethodPost, "/api/login", "", gin.H{"email": "an@example.com", "password": "wrong1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = a.do(http.MethodPost, "/api/login", "", gin.H{"email": "an@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "An", login["name"])
	assert.Equal(t, "user", login["role"])
	_, hasPassword := login["password"]
	assert.False(t, hasPassword)

	w, env = a.do(http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[model.User](t, env.Data)
	assert.Equal(t, "an@example.com", profile.Email)
	assert.Empty(t, profile.Password)

	w, _ = a.do(http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = a.do(http.MethodGet, "/api/profile", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = a.do(http.MethodPost, "/api/update-avatar", token, gin.H{"avatar": "🐼"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "🐼", decode[map[string]string](t, env.Data)["avatar"])
}

func TestCatalogRoutes(t *testing.T) {
	a := newTestApp(t)
	admin := a.adminToken()
	user := a.register("An", "an@example.com")

	w, _ := a.do(http.MethodPost, "/api/quizzes/add", user, gin.H{"title": "Đề 01", "subject": "Mạng"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = a.do(http.MethodPost, "/api/quizzes/add", "", gin.H{"title": "Đề 01", "subject": "Mạng"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := a.do(http.MethodPost, "/api/quizzes/add", admin, gin.H{"title": "Đề 01", "subject": "Mạng", "duration": 10, "totalMarks": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	quiz := decode[model.Quiz](t, env.Data)
	assert.NotEmpty(t, quiz.ID)

	for _, q := range []gin.H{
		{"subject": "Mạng", "quizTitle": "Đề 01", "questionText": "q1", "options": []string{"a", "b"}, "correctAnswer": "a"},
		{"subject": "Mạng", "questionText": "q2", "options": []string{"a", "b", "c"}, "correctAnswer": "c", "difficulty": "easy"},
	} {
		w, _ = a.do(http.MethodPost, "/api/questions/add", admin, q)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, _ = a.do(http.MethodPost, "/api/questions/add", admin, gin.H{"subject": "Mạng", "questionText": "q3", "options": []string{"a", "b", "c", "d", "e"}, "correctAnswer": "a"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = a.do(http.MethodPost, "/api/questions/add", admin, gin.H{"subject": "Mạng", "questionText": "q3", "options": []string{"a", "b"}, "correctAnswer": "z"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = a.do(http.MethodGet, "/api/quizzes/"+quiz.ID+"/questions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	selected := decode[struct {
		Questions []model.Question `json:"questions"`
	}](t, env.Data)
	require.Len(t, selected.Questions, 2)
	assert.Equal(t, "q1", selected.Questions[0].QuestionText)

	w, env = a.do(http.MethodGet, "/api/questions/M%E1%BA%A1ng", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Question](t, env.Data), 2)

	w, env = a.do(http.MethodDelete, "/api/quizzes/"+quiz.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]interface{}](t, env.Data)["questionsRemoved"])
	assert.Len(t, a.events.Published(events.QuizDeleted), 1)

	w, env = a.do(http.MethodGet, "/api/questions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	remaining := decode[[]model.Question](t, env.Data)
	require.Len(t, remaining, 1)
	assert.Equal(t, "q2", remaining[0].QuestionText)

	w, _ = a.do(http.MethodDelete, "/api/quizzes/"+quiz.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = a.do(http.MethodDelete, "/api/questions/"+remaining[0].ID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubjectRoutes(t *testing.T) {
	a := newTestApp(t)
	admin := a.adminToken()

	w, env := a.do(http.MethodPost, "/api/subjects", admin, gin.H{"name": "Toán"})
	require.Equal(t, http.StatusCreated, w.Code)
	subject := decode[model.Subject](t, env.Data)

	w, _ = a.do(http.MethodPost, "/api/subjects", admin, gin.H{"name": "TOÁN"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = a.do(http.MethodPut, "/api/subjects/"+subject.ID, admin, gin.H{"name": "Toán học"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Toán học", decode[model.Subject](t, env.Data).Name)

	w, env = a.do(http.MethodGet, "/api/subjects", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Subject](t, env.Data), 1)

	w, _ = a.do(http.MethodGet, "/api/subjects/"+subject.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(http.MethodDelete, "/api/subjects/"+subject.ID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(http.MethodGet, "/api/subjects/"+subject.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttemptRoutes(t *testing.T) {
	a := newTestApp(t)
	an := a.register("An", "an@example.com")
	binh := a.register("Bình", "binh@example.com")
	admin := a.adminToken()

	sel := 1
	questions := []model.AttemptQuestion{
		{Text: "q1", Options: []model.AttemptOption{{Text: "x"}, {Text: "y", IsCorrect: true}}},
		{Text: "q2", Options: []model.AttemptOption{{Text: "x", IsCorrect: true}, {Text: "y"}}},
	}
	answers := []model.AttemptAnswer{{SelectedIndex: &sel, CorrectIndex: 1}, {SelectedIndex: nil, CorrectIndex: 0}}
	clientID := model.GenerateUUID()
	body := gin.H{
		"clientId":  clientID,
		"user":      "an@example.com",
		"quizTitle": "Đề 01",
		"score":     10,
		"timeSpent": 42,
		"timeText":  "00:42",
		"questions": questions,
		"answers":   answers,
	}

	w, env := a.do(http.MethodPost, "/api/attempts", an, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	stored := decode[model.Attempt](t, env.Data)
	assert.Equal(t, 5, stored.Score)
	assert.Equal(t, clientID, stored.ClientID)

	w, env = a.do(http.MethodPost, "/api/attempts", an, body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, stored.ID, decode[model.Attempt](t, env.Data).ID)

	w, _ = a.do(http.MethodPost, "/api/attempt", an, gin.H{"quizTitle": "Đề 02", "rawScore": 1, "rawTotal": 1})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = a.do(http.MethodPost, "/api/attempts", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = a.do(http.MethodGet, "/api/attempts/an@example.com", an, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]model.Attempt](t, env.Data)
	require.Len(t, history, 2)
	assert.Equal(t, questions, []model.AttemptQuestion(history[0].Questions))
	assert.Equal(t, answers, []model.AttemptAnswer(history[0].Answers))

	w, _ = a.do(http.MethodGet, "/api/attempts/an@example.com", binh, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = a.do(http.MethodGet, "/api/attempts/an@example.com", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Attempt](t, env.Data), 2)

	w, _ = a.do(http.MethodGet, "/api/admin/attempts/export?email=an@example.com", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.Equal(t, "PK", w.Body.String()[:2])

	w, _ = a.do(http.MethodGet, "/api/admin/attempts/export", an, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReseedRoute(t *testing.T) {
	a := newTestApp(t)
	admin := a.adminToken()

	w, _ := a.do(http.MethodPost, "/api/admin/reseed", admin, gin.H{"secret": "nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := a.do(http.MethodPost, "/api/admin/reseed", admin, gin.H{"secret": "reseed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	counts := decode[map[string]interface{}](t, env.Data)
	assert.Contains(t, counts, "quizzes")
	assert.Contains(t, counts, "questions")
	assert.Contains(t, counts, "subjects")
}
