package handlers

import (
	"context"
	"net/http"

	"brewing_control/internal/models"
	"brewing_control/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

// mockProcess records every call by name and returns snap/err.
type mockProcess struct {
	snap  models.Snapshot
	err   error
	calls []string

	lastSteps     []models.RecipeStep
	lastDocument  []byte
	lastTemps     []float64
	lastActuators []bool
	lastIndex     int
	lastValue     float64
	lastState     bool
	lastSeconds   uint64
}

func (m *mockProcess) done(name string) (models.Snapshot, error) {
	m.calls = append(m.calls, name)
	return m.snap, m.err
}

func (m *mockProcess) LoadRecipe(_ context.Context, steps []models.RecipeStep) (models.Snapshot, error) {
	m.lastSteps = steps
	return m.done("load")
}
func (m *mockProcess) ImportRecipe(_ context.Context, document []byte) (models.Snapshot, error) {
	m.lastDocument = document
	return m.done("import")
}
func (m *mockProcess) Start(context.Context) (models.Snapshot, error) { return m.done("start") }
func (m *mockProcess) Pause(context.Context) (models.Snapshot, error) { return m.done("pause") }
func (m *mockProcess) Skip(context.Context) (models.Snapshot, error)  { return m.done("skip") }
func (m *mockProcess) Stop(context.Context) (models.Snapshot, error)  { return m.done("stop") }
func (m *mockProcess) SetTemperatureGoals(_ context.Context, goals []float64) (models.Snapshot, error) {
	m.lastTemps = goals
	return m.done("set_temperatures")
}
func (m *mockProcess) SetActuatorGoals(_ context.Context, goals []bool) (models.Snapshot, error) {
	m.lastActuators = goals
	return m.done("set_actuators")
}
func (m *mockProcess) OverrideTemperature(_ context.Context, index int, value float64) (models.Snapshot, error) {
	m.lastIndex, m.lastValue = index, value
	return m.done("override_temperature")
}
func (m *mockProcess) OverrideActuator(_ context.Context, index int, state bool) (models.Snapshot, error) {
	m.lastIndex, m.lastState = index, state
	return m.done("override_actuator")
}
func (m *mockProcess) OverrideDuration(_ context.Context, seconds uint64) (models.Snapshot, error) {
	m.lastSeconds = seconds
	return m.done("override_duration")
}

type mockStream struct {
	ch     chan models.Snapshot
	closed bool
}

func (s *mockStream) C() <-chan models.Snapshot { return s.ch }
func (s *mockStream) Close()                    { s.closed = true }

type mockMonitoring struct {
	state     models.Snapshot
	actuators []service.ActuatorState
	err       error
	stream    *mockStream
}

func (m *mockMonitoring) GetState(context.Context) (models.Snapshot, error) {
	return m.state, m.err
}
func (m *mockMonitoring) RecipeStatus(context.Context) (service.RecipeStatus, error) {
	return service.RecipeStatus{Recipe: m.state.Recipe, Process: m.state.Process}, m.err
}
func (m *mockMonitoring) Actuators(context.Context) ([]service.ActuatorState, error) {
	return m.actuators, m.err
}
func (m *mockMonitoring) Watch() service.Stream { return m.stream }

type mockRecipes struct {
	rec      models.StoredRecipe
	list     []models.StoredRecipe
	snap     models.Snapshot
	err      error
	lastName string
	lastID   string
	lastDoc  []byte
}

func (m *mockRecipes) Save(_ context.Context, name string, steps []models.RecipeStep) (models.StoredRecipe, error) {
	m.lastName = name
	return m.rec, m.err
}
func (m *mockRecipes) SaveDocument(_ context.Context, name string, document []byte) (models.StoredRecipe, error) {
	m.lastName, m.lastDoc = name, document
	return m.rec, m.err
}
func (m *mockRecipes) List(context.Context) ([]models.StoredRecipe, error) { return m.list, m.err }
func (m *mockRecipes) Get(_ context.Context, id string) (models.StoredRecipe, error) {
	m.lastID = id
	return m.rec, m.err
}
func (m *mockRecipes) Delete(_ context.Context, id string) error {
	m.lastID = id
	return m.err
}
func (m *mockRecipes) LoadStored(_ context.Context, id string) (models.Snapshot, error) {
	m.lastID = id
	return m.snap, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
