package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wricardo/santorini/game/board"
	"github.com/wricardo/santorini/game/clock"
	"github.com/wricardo/santorini/game/engine"
	"github.com/wricardo/santorini/game/service"
)

// fakeTime is a manually advanced clock source
type fakeTime struct{ t time.Time }

func (f *fakeTime) now() time.Time          { return f.t }
func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	time     *fakeTime
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
		time:     &fakeTime{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	var ids []board.PlayerID
	for _, p := range eng.Players() {
		ids = append(ids, p.ID)
	}
	clk := clock.New(time.Duration(config.TimeBankSeconds)*time.Second, ids, m.time.now)
	clk.Start(eng.CurrentPlayer().ID)

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		Clock:          clk,
		CreatedAt:      m.time.now(),
		LastAccessedAt: m.time.now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = m.time.now()
		return nil
	}
	return errors.New("session not found")
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	duel := engine.DefaultGameConfig()
	duel.Name = "duel"
	duel.Placement = engine.PlacementManual

	timed := engine.DefaultGameConfig()
	timed.Name = "timed"
	timed.Placement = engine.PlacementManual
	timed.TimeBankSeconds = 30

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"duel":  duel,
			"timed": timed,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	copied := *config
	copied.Players = append([]engine.PlayerConfig(nil), config.Players...)
	return &copied, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	var result []*service.ConfigInfo
	for id, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename: id + ".json",
			ConfigID: id,
			Name:     config.Name,
			Rows:     config.Rows,
			Cols:     config.Cols,
			Players:  len(config.Players),
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	config, _ := m.LoadConfig("duel")
	return config
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	m.configs[name] = config
	return nil
}

func newTestService(t *testing.T) (service.GameService, *MockSessionManager) {
	t.Helper()
	sessions := NewMockSessionManager()
	return service.NewGameService(sessions, NewMockConfigManager()), sessions
}

// placeAll puts P1 on (0,0),(0,1) and P2 on (4,4),(4,3)
func placeAll(t *testing.T, svc service.GameService, id string) {
	t.Helper()
	ctx := context.Background()
	for _, at := range []board.Coordinate{board.At(0, 0), board.At(0, 1), board.At(4, 4), board.At(4, 3)} {
		res, err := svc.ChooseAt(ctx, id, at)
		if err != nil {
			t.Fatalf("Failed to place at %s: %v", at, err)
		}
		if !res.Applied {
			t.Fatalf("Placement at %s rejected: %s", at, res.Reason)
		}
	}
}

func TestCreateSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("Failed to create default session: %v", err)
	}
	if info.ConfigName != "duel" {
		t.Errorf("Expected default config duel, got %s", info.ConfigName)
	}
	if info.Table == nil || info.Table.Phase != engine.PhasePlace {
		t.Fatalf("Expected a table in the place phase, got %+v", info.Table)
	}
	if len(info.Table.Clocks) != 0 {
		t.Errorf("Expected no clocks without a time bank, got %v", info.Table.Clocks)
	}

	if _, err := svc.CreateSession(ctx, "missing"); !errors.Is(err, service.ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	sessions, err := svc.ListSessions(ctx)
	if err != nil || len(sessions) != 1 {
		t.Errorf("Expected 1 session, got %d (%v)", len(sessions), err)
	}
}

func TestSessionNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "nope"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("GetSession: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.ChooseAt(ctx, "nope", board.At(0, 0)); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("ChooseAt: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.GetTableState(ctx, "nope"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("GetTableState: expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.DeleteSession(ctx, "nope"); err == nil {
		t.Error("Expected error deleting a missing session")
	}
}

func TestFullTurnThroughService(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "duel")
	if err != nil {
		t.Fatal(err)
	}
	placeAll(t, svc, info.ID)

	state, err := svc.GetTableState(ctx, info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if state.Phase != engine.PhaseSelect || state.CurrentPlayer != 0 {
		t.Fatalf("Expected P1 to select, got phase %s player %d", state.Phase, state.CurrentPlayer)
	}

	steps := []struct {
		name string
		do   func() (*service.TurnResult, error)
		want engine.Phase
	}{
		{"select", func() (*service.TurnResult, error) { return svc.SelectWorker(ctx, info.ID, board.At(0, 0)) }, engine.PhaseMove},
		{"move", func() (*service.TurnResult, error) { return svc.ChooseAt(ctx, info.ID, board.At(1, 1)) }, engine.PhaseBuild},
		{"build", func() (*service.TurnResult, error) { return svc.ChooseAt(ctx, info.ID, board.At(2, 2)) }, engine.PhaseSelect},
	}
	for _, step := range steps {
		res, err := step.do()
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if !res.Applied {
			t.Fatalf("%s: rejected: %s", step.name, res.Reason)
		}
		if res.Table.Phase != step.want {
			t.Errorf("%s: expected phase %s, got %s", step.name, step.want, res.Table.Phase)
		}
		if len(res.Events) == 0 {
			t.Errorf("%s: expected events", step.name)
		}
	}

	state, _ = svc.GetTableState(ctx, info.ID)
	if state.CurrentPlayer != 1 {
		t.Errorf("Expected P2 to play next, got %d", state.CurrentPlayer)
	}
	if state.Heights[2][2] != 1 {
		t.Errorf("Expected a tower at (2,2), got height %d", state.Heights[2][2])
	}
}

func TestRejectedActionIsNotAnError(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	info, _ := svc.CreateSession(ctx, "duel")
	placeAll(t, svc, info.ID)
	if _, err := svc.SelectWorker(ctx, info.ID, board.At(0, 0)); err != nil {
		t.Fatal(err)
	}

	res, err := svc.ChooseAt(ctx, info.ID, board.At(0, 1))
	if err != nil {
		t.Fatalf("Expected no error for an illegal move, got %v", err)
	}
	if res.Applied || res.Reason == "" {
		t.Errorf("Expected a rejected move with a reason, got %+v", res)
	}

	if _, err := svc.RespondGodPower(ctx, info.ID, true); !errors.Is(err, engine.ErrNoPendingOffer) {
		t.Errorf("Expected ErrNoPendingOffer, got %v", err)
	}
	if _, err := svc.EndTurn(ctx, info.ID); !errors.Is(err, engine.ErrUnknownAction) {
		t.Errorf("Expected ErrUnknownAction without a skip option, got %v", err)
	}
}

func TestClockExpiryDropsTheAction(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "timed")
	if err != nil {
		t.Fatal(err)
	}
	if len(info.Table.Clocks) != 2 {
		t.Fatalf("Expected 2 clocks, got %d", len(info.Table.Clocks))
	}
	if !info.Table.Clocks[0].Running {
		t.Error("Expected P1's clock to run")
	}

	sessions.time.advance(10 * time.Second)
	placeAll(t, svc, info.ID)

	state, _ := svc.GetTableState(ctx, info.ID)
	if got := state.Clocks[0].RemainingSeconds; got != 20 {
		t.Errorf("Expected P1 to have 20s left, got %v", got)
	}
	if !state.Clocks[0].Running || state.Clocks[1].Running {
		t.Errorf("Expected only P1's clock to run, got %+v", state.Clocks)
	}

	sessions.time.advance(25 * time.Second)
	res, err := svc.SelectWorker(ctx, info.ID, board.At(0, 0))
	if err != nil {
		t.Fatalf("Expected the expiry to be delivered, got %v", err)
	}
	if res.Applied {
		t.Error("Expected the late selection to be dropped")
	}
	if !res.Won() || *res.Table.Winner != 1 {
		t.Fatalf("Expected P2 to win on time, got %+v", res.Table.Winner)
	}
	if !res.Table.Players[0].Eliminated {
		t.Error("Expected P1 to be eliminated")
	}

	if _, err := svc.SelectWorker(ctx, info.ID, board.At(4, 4)); !errors.Is(err, engine.ErrGameOver) {
		t.Errorf("Expected ErrGameOver after the win, got %v", err)
	}
}

func TestSweepClocks(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()

	timed, _ := svc.CreateSession(ctx, "timed")
	untimed, _ := svc.CreateSession(ctx, "duel")

	results, err := svc.SweepClocks(ctx)
	if err != nil || len(results) != 0 {
		t.Fatalf("Expected nothing to sweep, got %d results (%v)", len(results), err)
	}

	sessions.time.advance(31 * time.Second)
	results, err = svc.SweepClocks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].SessionID != timed.ID {
		t.Fatalf("Expected one result for %s, got %+v", timed.ID, results)
	}
	if !results[0].Won() {
		t.Error("Expected the sweep to end the two player game")
	}

	state, _ := svc.GetTableState(ctx, untimed.ID)
	if state.Winner != nil {
		t.Error("Expected the untimed table to be untouched")
	}
}

func TestDeleteSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	info, _ := svc.CreateSession(ctx, "duel")
	if err := svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := svc.GetSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}
}
