package api

import (
	"alcyxob/coachtrack/internal/catalog"
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/notify"
	"alcyxob/coachtrack/internal/repository/memory"
	"alcyxob/coachtrack/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type nopMailer struct{}

func (nopMailer) Send(ctx context.Context, msg notify.Message) error { return nil }

type testServer struct {
	router *gin.Engine
	svc    Services
}

func newTestServer(t *testing.T, devMode bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stores := memory.New().Stores()
	cat, err := catalog.New([]domain.Exercise{
		{ID: "bench-press", Name: "Bench Press", Category: domain.CategoryChest},
		{ID: "squat", Name: "Squat", Category: domain.CategoryLegs},
	})
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}
	exercises := service.NewExerciseService(cat, nil)
	workouts := service.NewWorkoutLog(stores.Collections)
	plans := service.NewPlanBook(stores.Collections)
	stats := service.NewStatsService(stores.Clients, workouts)

	revoked := service.NewRevocationList()
	svc := Services{
		Auth: service.NewAuthService(stores.Clients, stores.Invitations, revoked,
			service.AuthOptions{JWTSecret: "test-secret", JWTExpiration: time.Hour, DevMode: devMode}),
		Clients:   service.NewClientService(stores.Clients, stores.Invitations, plans, workouts, revoked, nopMailer{}, service.WelcomeSettings{AppName: "Coachtrack"}),
		Plans:     service.NewPlanService(plans, workouts, stores.Clients, exercises),
		Sessions:  service.NewSessionService(workouts, plans, exercises, stats),
		Exercises: exercises,
	}
	if err := svc.Auth.EnsureTrainer(context.Background(), "Coach", "coach@example.com", "coach-pass"); err != nil {
		t.Fatalf("EnsureTrainer failed: %v", err)
	}

	router := gin.New()
	SetupRoutes(router, svc, RouteOptions{DevMode: devMode})
	return &testServer{router: router, svc: svc}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: email, Password: password})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}
	var resp LoginResponse
	decode(t, w, &resp)
	return resp.Token
}

// clientToken creates a client through the API and returns a token for it
// that has already passed the password change.
func (s *testServer) clientToken(t *testing.T, trainerToken, email string) (string, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/clients", trainerToken, AddClientRequest{Name: "Ann", Email: email})
	if w.Code != http.StatusCreated {
		t.Fatalf("add client: status %d body %s", w.Code, w.Body.String())
	}
	var created AddClientResponse
	decode(t, w, &created)

	token := s.login(t, email, created.StarterPassword)
	w = s.do(t, http.MethodPost, "/api/v1/auth/change-password", token, ChangePasswordRequest{
		CurrentPassword: created.StarterPassword, NewPassword: "client-pass", ConfirmPassword: "client-pass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("change password: status %d body %s", w.Code, w.Body.String())
	}
	var changed LoginResponse
	decode(t, w, &changed)
	return changed.Token, created.Client.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decode(t, w, &resp)
	return resp.Code
}

func TestLoginErrors(t *testing.T) {
	s := newTestServer(t, false)
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"wrong password", LoginRequest{Email: "coach@example.com", Password: "nope"}, http.StatusUnauthorized, CodeInvalidPassword},
		{"not invited", LoginRequest{Email: "who@example.com", Password: "nope"}, http.StatusUnauthorized, CodeUserNotInvited},
		{"missing fields", gin.H{"email": "coach@example.com"}, http.StatusBadRequest, CodeValidationFailed},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", test.body)
			if w.Code != test.wantStatus || errorCode(t, w) != test.wantCode {
				t.Errorf("got %d %s, want %d %s", w.Code, w.Body.String(), test.wantStatus, test.wantCode)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t, false)
	for _, header := range []string{"", "garbage", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized || errorCode(t, w) != CodeUnauthorized {
			t.Errorf("header %q: got %d %s", header, w.Code, w.Body.String())
		}
	}
}

func TestPasswordChangeGate(t *testing.T) {
	s := newTestServer(t, false)
	trainer := s.login(t, "coach@example.com", "coach-pass")

	w := s.do(t, http.MethodPost, "/api/v1/clients", trainer, AddClientRequest{Name: "Ann", Email: "ann@example.com"})
	var created AddClientResponse
	decode(t, w, &created)
	starter := s.login(t, "ann@example.com", created.StarterPassword)

	if w := s.do(t, http.MethodGet, "/api/v1/me", starter, nil); w.Code != http.StatusOK {
		t.Errorf("/me must stay reachable, got %d", w.Code)
	}
	w = s.do(t, http.MethodGet, "/api/v1/exercises", starter, nil)
	if w.Code != http.StatusForbidden || errorCode(t, w) != CodePasswordChangeRequired {
		t.Errorf("expected PASSWORD_CHANGE_REQUIRED, got %d %s", w.Code, w.Body.String())
	}
}

func TestTrainerOnlyRoutes(t *testing.T) {
	s := newTestServer(t, false)
	trainer := s.login(t, "coach@example.com", "coach-pass")
	client, _ := s.clientToken(t, trainer, "ann@example.com")

	w := s.do(t, http.MethodGet, "/api/v1/clients", client, nil)
	if w.Code != http.StatusForbidden || errorCode(t, w) != CodeForbidden {
		t.Errorf("client must not list clients, got %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/clients", trainer, nil)
	var clients []UserResponse
	decode(t, w, &clients)
	if w.Code != http.StatusOK || len(clients) != 1 {
		t.Errorf("expected 1 client, got %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/v1/clients", trainer, AddClientRequest{Name: "Dup", Email: "ANN@example.com"})
	if w.Code != http.StatusConflict || errorCode(t, w) != CodeClientEmailExists {
		t.Errorf("expected CLIENT_EMAIL_EXISTS, got %d %s", w.Code, w.Body.String())
	}
}

func TestSessionFlow(t *testing.T) {
	s := newTestServer(t, false)
	trainer := s.login(t, "coach@example.com", "coach-pass")
	client, _ := s.clientToken(t, trainer, "ann@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/session/exercises", client, AddExerciseRequest{ExerciseID: "squat"})
	if w.Code != http.StatusConflict || errorCode(t, w) != CodeNoActiveWorkout {
		t.Fatalf("expected NO_ACTIVE_WORKOUT, got %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/v1/session", client, nil)
	var idle ActiveResponse
	decode(t, w, &idle)
	if w.Code != http.StatusOK || idle.Workout != nil {
		t.Errorf("expected idle session, got %d %s", w.Code, w.Body.String())
	}

	if w := s.do(t, http.MethodPost, "/api/v1/session/start", client, nil); w.Code != http.StatusOK {
		t.Fatalf("start: %d %s", w.Code, w.Body.String())
	}
	if w := s.do(t, http.MethodPost, "/api/v1/session/exercises", client, AddExerciseRequest{ExerciseID: "squat"}); w.Code != http.StatusOK {
		t.Fatalf("add exercise: %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPatch, "/api/v1/session/exercises/0/sets/0", client, gin.H{"reps": 5, "weight": 100})
	var updated domain.Workout
	decode(t, w, &updated)
	if w.Code != http.StatusOK || updated.Exercises[0].Sets[0].Weight != 100 {
		t.Errorf("update set: %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPatch, "/api/v1/session/exercises/3/sets/0", client, gin.H{"reps": 5})
	if w.Code != http.StatusBadRequest || errorCode(t, w) != CodeIndexOutOfRange {
		t.Errorf("expected INDEX_OUT_OF_RANGE, got %d %s", w.Code, w.Body.String())
	}
	w = s.do(t, http.MethodDelete, "/api/v1/session/exercises/x", client, nil)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != CodeValidationFailed {
		t.Errorf("expected VALIDATION_FAILED for a non-numeric index, got %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/v1/session/end", client, nil)
	var ended domain.Workout
	decode(t, w, &ended)
	if w.Code != http.StatusOK || !ended.Completed {
		t.Errorf("end: %d %s", w.Code, w.Body.String())
	}
	if w := s.do(t, http.MethodPost, "/api/v1/session/end", client, nil); w.Code != http.StatusNoContent {
		t.Errorf("second end should be 204, got %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/workouts", client, nil)
	var history []domain.Workout
	decode(t, w, &history)
	if len(history) != 1 {
		t.Errorf("expected 1 workout in history, got %d", len(history))
	}

	w = s.do(t, http.MethodGet, "/api/v1/me", client, nil)
	var me UserResponse
	decode(t, w, &me)
	if me.Stats.TotalWorkouts != 1 || me.Stats.PersonalRecords["squat"] != 100 {
		t.Errorf("stats not refreshed: %+v", me.Stats)
	}
}

func TestScheduleAndClientPlans(t *testing.T) {
	s := newTestServer(t, false)
	trainer := s.login(t, "coach@example.com", "coach-pass")
	client, clientID := s.clientToken(t, trainer, "ann@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/plans", trainer, PlanRequest{
		Name:      "Legs",
		Exercises: []domain.WorkoutExercise{{ExerciseID: "squat", Sets: []domain.WorkoutSet{{Reps: 5, Weight: 80}}}},
	})
	var plan domain.WorkoutPlan
	decode(t, w, &plan)
	if w.Code != http.StatusCreated {
		t.Fatalf("create plan: %d %s", w.Code, w.Body.String())
	}

	if w := s.do(t, http.MethodGet, "/api/v1/plans/"+plan.ID, client, nil); w.Code != http.StatusNotFound {
		t.Errorf("unassigned plan must be hidden from the client, got %d", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/v1/plans/"+plan.ID+"/assign", trainer, AssignPlanRequest{UserID: clientID}); w.Code != http.StatusOK {
		t.Fatalf("assign: %d %s", w.Code, w.Body.String())
	}
	w = s.do(t, http.MethodGet, "/api/v1/plans", client, nil)
	var mine []domain.WorkoutPlan
	decode(t, w, &mine)
	if len(mine) != 1 {
		t.Errorf("expected 1 assigned plan, got %d", len(mine))
	}

	start := time.Date(2030, time.January, 7, 0, 0, 0, 0, time.UTC) // Monday
	w = s.do(t, http.MethodPost, "/api/v1/schedules", trainer, ScheduleRequest{
		ClientID: clientID, PlanID: plan.ID, StartDate: start,
		Recurring: true, EndDate: start.AddDate(0, 0, 6), Weekdays: []int{1, 3, 5},
	})
	var scheduled []domain.Workout
	decode(t, w, &scheduled)
	if w.Code != http.StatusCreated || len(scheduled) != 3 {
		t.Fatalf("schedule: %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/v1/schedules", trainer, ScheduleRequest{
		ClientID: clientID, PlanID: plan.ID, StartDate: start,
		Recurring: true, EndDate: start.AddDate(0, 0, 1), Weekdays: []int{6},
	})
	if w.Code != http.StatusBadRequest || errorCode(t, w) != CodeValidationFailed {
		t.Errorf("expected VALIDATION_FAILED for no dates, got %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/v1/session/start", client, StartRequest{WorkoutID: scheduled[0].ID})
	var active domain.Workout
	decode(t, w, &active)
	if w.Code != http.StatusOK || active.ID != scheduled[0].ID {
		t.Errorf("start scheduled: %d %s", w.Code, w.Body.String())
	}
}

func TestSwitchRoleOnlyInDevMode(t *testing.T) {
	prod := newTestServer(t, false)
	token := prod.login(t, "coach@example.com", "coach-pass")
	if w := prod.do(t, http.MethodPost, "/api/v1/auth/switch-role", token, nil); w.Code != http.StatusNotFound {
		t.Errorf("switch-role must not be routed outside dev mode, got %d", w.Code)
	}

	dev := newTestServer(t, true)
	token = dev.login(t, "coach@example.com", "coach-pass")
	w := dev.do(t, http.MethodPost, "/api/v1/auth/switch-role", token, nil)
	var resp LoginResponse
	decode(t, w, &resp)
	if w.Code != http.StatusOK || resp.User.Role != domain.RoleClient {
		t.Errorf("switch-role: %d %s", w.Code, w.Body.String())
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t, false)
	token := s.login(t, "coach@example.com", "coach-pass")
	if w := s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/me", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token accepted: %d", w.Code)
	}
}

func TestRemovedClientLosesAccess(t *testing.T) {
	s := newTestServer(t, false)
	trainer := s.login(t, "coach@example.com", "coach-pass")
	client, clientID := s.clientToken(t, trainer, "ann@example.com")

	if w := s.do(t, http.MethodPost, "/api/v1/session/start", client, nil); w.Code != http.StatusOK {
		t.Fatalf("start: %d %s", w.Code, w.Body.String())
	}
	if w := s.do(t, http.MethodDelete, "/api/v1/clients/"+clientID, trainer, nil); w.Code != http.StatusNoContent {
		t.Fatalf("remove client: %d %s", w.Code, w.Body.String())
	}
	w := s.do(t, http.MethodPost, "/api/v1/session/exercises", client, AddExerciseRequest{ExerciseID: "squat"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("removed client kept access: %d %s", w.Code, w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, Services{}, RouteOptions{Degraded: func() bool { return true }})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("degraded")) {
		t.Errorf("unexpected healthz: %d %s", w.Code, w.Body.String())
	}
}
