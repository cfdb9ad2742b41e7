package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/wricardo/santorini/game/board"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Table state
	Phase() Phase
	CurrentPlayer() *Player
	Players() []*Player
	Board() *board.Board
	SelectedWorker() *Worker
	PendingOffer() *GodOffer
	Winner() (*Player, bool)
	IsGameOver() bool
	Fault() error
	Snapshot() *GameState

	// Candidate actions for the current phase, valid and invalid
	LegalActions() []Action
	LegalMoves() []Action
	LegalBuilds() []Action
	LegalPlacements() []Action

	// Turn operations
	SelectWorker(at board.Coordinate) (*Result, error)
	Choose(a Action) (*Result, error)
	ChooseAt(at board.Coordinate) (*Result, error)
	ChooseEndTurn() (*Result, error)
	RespondGodPower(accept bool) (*Result, error)
	DeclareHelpfulToken(use bool) (*Result, error)
	ExpireClock(id board.PlayerID) (*Result, error)

	GetConfig() *GameConfig
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; hosts must serialize calls.
type GameEngine struct {
	config  *GameConfig
	board   *board.Board
	players []*Player
	workers map[board.WorkerID]*Worker
	current int
	turn    TurnState
	winner  *Player
	fault   error
	rng     *rand.Rand
}

// NewEngine creates a new game from the provided configuration. Workers are
// placed immediately in random mode; manual mode starts in the place phase.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	b, err := board.New(config.Rows, config.Cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &GameEngine{
		config:  config,
		board:   b,
		workers: make(map[board.WorkerID]*Worker),
		rng:     rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x5eed)),
	}

	for i, pc := range config.Players {
		god, err := LookupGod(pc.God)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", i+1, err)
		}
		p := &Player{
			ID:            board.PlayerID(i),
			Name:          pc.Name,
			God:           god,
			HelpfulTokens: config.HelpfulTokens,
		}
		for _, sex := range []board.Sex{board.Male, board.Female} {
			id := board.WorkerID(i*WorkersPerPlayer + int(sex))
			w, err := newWorker(id, p, sex, b)
			if err != nil {
				return nil, err
			}
			p.Workers[sex] = w
			e.workers[id] = w
		}
		e.players = append(e.players, p)
	}

	open := b.OpenGround()
	if need := len(e.players) * WorkersPerPlayer; len(open) < need {
		return nil, fmt.Errorf("%w: need %d spaces, board has %d", ErrNotEnoughGround, need, len(open))
	}

	if config.Placement == PlacementManual {
		e.turn = newTurnState(PhasePlace)
		e.refreshPlacements()
		return e, nil
	}

	e.rng.Shuffle(len(open), func(i, j int) { open[i], open[j] = open[j], open[i] })
	next := 0
	for _, p := range e.players {
		for _, w := range p.Workers {
			if err := b.PlaceWorker(w.ID, open[next]); err != nil {
				return nil, err
			}
			next++
		}
	}
	if err := e.startPlay(&Result{}); err != nil {
		return nil, err
	}

	return e, nil
}

// GetConfig returns the configuration the game was created with
func (e *GameEngine) GetConfig() *GameConfig { return e.config }

// Phase returns the current phase
func (e *GameEngine) Phase() Phase { return e.turn.Phase }

// CurrentPlayer returns the player whose turn it is
func (e *GameEngine) CurrentPlayer() *Player { return e.players[e.current] }

// Players returns every seat, eliminated players included
func (e *GameEngine) Players() []*Player {
	out := make([]*Player, len(e.players))
	copy(out, e.players)
	return out
}

// Board returns the game board
func (e *GameEngine) Board() *board.Board { return e.board }

// SelectedWorker returns the worker acting this turn, or nil
func (e *GameEngine) SelectedWorker() *Worker { return e.turn.Selected }

// PendingOffer returns the god power waiting for an answer, or nil
func (e *GameEngine) PendingOffer() *GodOffer { return e.turn.Offer }

// Winner returns the winning player once the game is over
func (e *GameEngine) Winner() (*Player, bool) { return e.winner, e.winner != nil }

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool { return e.winner != nil }

// Fault returns the invariant violation that halted the game, if any
func (e *GameEngine) Fault() error { return e.fault }

// LegalActions returns a copy of the candidate actions for the current phase
func (e *GameEngine) LegalActions() []Action {
	out := make([]Action, len(e.turn.actions))
	copy(out, e.turn.actions)
	return out
}

// LegalMoves returns the move candidates of the current phase
func (e *GameEngine) LegalMoves() []Action { return e.actionsOfKind(KindMove) }

// LegalBuilds returns the build candidates of the current phase
func (e *GameEngine) LegalBuilds() []Action { return e.actionsOfKind(KindBuild) }

// LegalPlacements returns the placement candidates of the current phase
func (e *GameEngine) LegalPlacements() []Action { return e.actionsOfKind(KindPlaceWorker) }

func (e *GameEngine) actionsOfKind(kind ActionKind) []Action {
	var out []Action
	for _, a := range e.turn.actions {
		if a.Kind() == kind {
			out = append(out, a)
		}
	}
	return out
}

// WorkerByID returns the worker with the given id
func (e *GameEngine) WorkerByID(id board.WorkerID) (*Worker, bool) {
	w, ok := e.workers[id]
	return w, ok
}

func (e *GameEngine) guard() error {
	if e.fault != nil {
		return fmt.Errorf("%w: %w", ErrGameFaulted, e.fault)
	}
	if e.winner != nil {
		return ErrGameOver
	}
	return nil
}

// fail latches invariant violations; other errors pass through untouched
func (e *GameEngine) fail(err error) error {
	if errors.Is(err, board.ErrInvariantViolation) {
		e.fault = err
		return fmt.Errorf("%w: %w", ErrGameFaulted, err)
	}
	return err
}

func (e *GameEngine) result(res *Result) *Result {
	res.Phase = e.turn.Phase
	res.Winner = e.winner
	return res
}

// SelectWorker picks the worker that acts this turn. Selecting the same
// worker again clears the selection. The selection is fixed once the worker
// has acted.
func (e *GameEngine) SelectWorker(at board.Coordinate) (*Result, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	switch e.turn.Phase {
	case PhaseSelect:
	case PhaseMove:
		if e.turn.Committed() {
			return nil, fmt.Errorf("%w: the selected worker already acted", ErrWrongPhase)
		}
	default:
		return nil, fmt.Errorf("%w: cannot select a worker during %s", ErrWrongPhase, e.turn.Phase)
	}

	piece, ok := e.board.WorkerAt(at)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoWorkerThere, at)
	}
	w := e.workers[piece.ID]
	p := e.CurrentPlayer()
	if !p.Owns(w) {
		return nil, fmt.Errorf("%w: %s", ErrNotYourWorker, at)
	}
	if e.turn.Locked != nil {
		return nil, fmt.Errorf("%w: worker %d must finish the turn", ErrWorkerLocked, e.turn.Locked.ID)
	}

	res := &Result{Applied: true}
	if e.turn.Selected == w {
		e.turn.Selected = nil
		e.turn.GodActive = false
		e.turn.Phase = PhaseSelect
		e.turn.actions = nil
		res.add(EventSelected, p.ID, "worker deselected", &at)
		return e.result(res), nil
	}

	e.turn.Selected = w
	res.add(EventSelected, p.ID, fmt.Sprintf("%s selected worker at %s", p.Name, at), &at)
	if err := e.reachCheckpoint(CheckpointSelect, res); err != nil {
		return nil, e.fail(err)
	}
	return e.result(res), nil
}

// Choose applies one of the candidate actions of the current phase. The
// action may be the cached value itself or an equivalent one with the same
// kind, worker and target. Invalid actions are reported, never applied.
func (e *GameEngine) Choose(a Action) (*Result, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	switch e.turn.Phase {
	case PhasePlace, PhaseMove, PhaseBuild:
	default:
		return nil, fmt.Errorf("%w: nothing to choose during %s", ErrWrongPhase, e.turn.Phase)
	}

	match := e.lookup(a)
	if match == nil {
		return nil, ErrUnknownAction
	}
	if !match.Valid() {
		return e.result(&Result{Action: match, Reason: match.Reason()}), nil
	}

	res := &Result{Applied: true, Action: match}
	if err := e.apply(match, res); err != nil {
		return nil, e.fail(err)
	}
	return e.result(res), nil
}

// ChooseAt chooses the candidate action targeting at, preferring a valid one
func (e *GameEngine) ChooseAt(at board.Coordinate) (*Result, error) {
	var found Action
	for _, a := range e.turn.actions {
		target, ok := a.Target()
		if !ok || target != at {
			continue
		}
		if a.Valid() {
			found = a
			break
		}
		if found == nil {
			found = a
		}
	}
	if found == nil {
		if err := e.guard(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: nothing targets %s", ErrUnknownAction, at)
	}
	return e.Choose(found)
}

// ChooseEndTurn takes the skip option of an active god power
func (e *GameEngine) ChooseEndTurn() (*Result, error) {
	for _, a := range e.turn.actions {
		if a.Kind() == KindEndTurn {
			return e.Choose(a)
		}
	}
	if err := e.guard(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: ending the turn early is not offered", ErrUnknownAction)
}

func (e *GameEngine) lookup(a Action) Action {
	if a == nil {
		return nil
	}
	for _, c := range e.turn.actions {
		if c == a {
			return c
		}
	}
	target, hasTarget := a.Target()
	for _, c := range e.turn.actions {
		if c.Kind() != a.Kind() || c.Worker() != a.Worker() {
			continue
		}
		t, ok := c.Target()
		if ok == hasTarget && t == target {
			return c
		}
	}
	return nil
}

func (e *GameEngine) apply(a Action, res *Result) error {
	if err := Apply(a, e.board); err != nil {
		return err
	}
	w := a.Worker()
	p := w.Owner()

	switch act := a.(type) {
	case *PlaceWorkerAction:
		res.add(EventPlaced, p.ID, fmt.Sprintf("%s placed a worker at %s", p.Name, act.At), &act.At)
		if act.IsEndTurn() {
			return e.nextPlacer(res)
		}
		e.refreshPlacements()
		return nil

	case *MoveAction:
		msg := fmt.Sprintf("%s moved from %s to %s", p.Name, act.From, act.To)
		if act.Displaced != nil {
			msg += fmt.Sprintf(", swapping with player %d", act.Displaced.Owner+1)
		}
		res.add(EventMoved, p.ID, msg, &act.To)
		if act.IsWinCondition() {
			e.declareWinner(p, res)
			return nil
		}
		e.turn.GodActive = false
		return e.reachCheckpoint(CheckpointMoved, res)

	case *BuildAction:
		res.add(EventBuilt, p.ID, fmt.Sprintf("%s built %s at %s", p.Name, act.Piece.Name(), act.At), &act.At)
		e.turn.GodActive = false
		return e.reachCheckpoint(CheckpointBuilt, res)

	case *EndTurnAction:
		if e.turn.Phase == PhaseMove {
			return e.enterBuild(res)
		}
		return e.endTurn(res)
	}
	return fmt.Errorf("%w: unhandled action %T", board.ErrInvariantViolation, a)
}

// RespondGodPower answers a pending optional god power
func (e *GameEngine) RespondGodPower(accept bool) (*Result, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	offer := e.turn.Offer
	if e.turn.Phase != PhaseGodOffer || offer == nil {
		return nil, ErrNoPendingOffer
	}
	e.turn.Offer = nil

	res := &Result{Applied: true}
	p := e.CurrentPlayer()
	if accept && e.activateGod(res) {
		return e.result(res), nil
	}
	if !accept {
		res.add(EventGodDeclined, p.ID, fmt.Sprintf("%s declined %s", p.Name, offer.God.Name()), nil)
	}
	if err := e.proceed(offer.Checkpoint, res); err != nil {
		return nil, e.fail(err)
	}
	return e.result(res), nil
}

// DeclareHelpfulToken spends a helpful token so the build targets the
// partner worker's neighbourhood. Only allowed before the first build of a
// default build phase.
func (e *GameEngine) DeclareHelpfulToken(use bool) (*Result, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	w := e.turn.Selected
	if e.turn.Phase != PhaseBuild || e.turn.GodActive || e.turn.Helpful || w == nil || w.history.HasBuilt() {
		return nil, fmt.Errorf("%w: helpful tokens are declared at the start of a build", ErrWrongPhase)
	}
	p := w.Owner()
	res := &Result{}

	if !use {
		if countValid(e.turn.actions) == 0 {
			if err := e.eliminateCurrent("declined the only legal build", res); err != nil {
				return nil, e.fail(err)
			}
			res.Applied = true
		}
		return e.result(res), nil
	}

	if p.HelpfulTokens <= 0 {
		return nil, ErrNoHelpfulToken
	}
	helpful := w.HelpfulBuildActions()
	if countValid(helpful) == 0 {
		return nil, ErrNoHelpfulBuild
	}

	p.HelpfulTokens--
	e.turn.Helpful = true
	e.turn.actions = asActions(helpful)
	res.Applied = true
	res.add(EventHelpfulToken, p.ID, fmt.Sprintf("%s builds around the partner worker (%d tokens left)", p.Name, p.HelpfulTokens), nil)
	return e.result(res), nil
}

// ExpireClock eliminates a player whose time bank ran out. When that player
// is the one to act the turn is abandoned; otherwise the turn in progress
// keeps going with its candidates regenerated around the emptied spaces.
func (e *GameEngine) ExpireClock(id board.PlayerID) (*Result, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	if int(id) < 0 || int(id) >= len(e.players) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, id)
	}
	p := e.players[id]
	if p.eliminated {
		return nil, fmt.Errorf("%w: %s", ErrPlayerEliminated, p.Name)
	}

	res := &Result{Applied: true}
	var err error
	if p == e.CurrentPlayer() {
		err = e.eliminateCurrent("ran out of time", res)
	} else if err = e.eliminate(p, "ran out of time", res); err == nil && e.winner == nil {
		e.refreshActions()
	}
	if err != nil {
		return nil, e.fail(err)
	}
	return e.result(res), nil
}

// refreshActions regenerates the candidate set of the phase in progress
// after the board changed outside the current player's turn
func (e *GameEngine) refreshActions() {
	w := e.turn.Selected
	switch e.turn.Phase {
	case PhasePlace:
		e.refreshPlacements()
	case PhaseMove, PhaseBuild:
		if w == nil {
			return
		}
		switch {
		case e.turn.GodActive:
			e.turn.actions = w.Owner().God.Actions(w, w.History())
		case e.turn.Phase == PhaseMove:
			e.turn.actions = asActions(w.MoveActions())
		case e.turn.Helpful:
			e.turn.actions = asActions(w.HelpfulBuildActions())
		default:
			e.turn.actions = asActions(w.BuildActions())
		}
	}
}

// reachCheckpoint runs the god check and, when no power takes over, the
// default progression for cp
func (e *GameEngine) reachCheckpoint(cp Checkpoint, res *Result) error {
	if e.checkGod(cp, res) {
		return nil
	}
	return e.proceed(cp, res)
}

func (e *GameEngine) proceed(cp Checkpoint, res *Result) error {
	switch cp {
	case CheckpointSelect:
		e.enterMove()
		return nil
	case CheckpointMoved:
		return e.enterBuild(res)
	case CheckpointBuilt:
		return e.endTurn(res)
	}
	return fmt.Errorf("%w: unknown checkpoint %d", board.ErrInvariantViolation, cp)
}

// checkGod offers or activates the current player's god for the selected
// worker. It reports whether the power took over the phase.
func (e *GameEngine) checkGod(cp Checkpoint, res *Result) bool {
	w := e.turn.Selected
	god := w.Owner().God
	if god == nil || e.turn.Prompted(w) || !god.Condition(w, w.History()) {
		return false
	}

	if !god.Optional() {
		return e.activateGod(res)
	}

	e.turn.latch(w)
	e.turn.Offer = &GodOffer{God: god, Worker: w, Checkpoint: cp}
	e.turn.Phase = PhaseGodOffer
	e.turn.actions = nil
	res.add(EventGodOffered, w.Owner().ID, fmt.Sprintf("%s may use %s: %s", w.Owner().Name, god.Name(), god.Description()), nil)
	return true
}

func (e *GameEngine) activateGod(res *Result) bool {
	w := e.turn.Selected
	p := w.Owner()
	god := p.God

	actions := god.Actions(w, w.History())
	if countValid(actions) == 0 {
		res.add(EventGodSkipped, p.ID, fmt.Sprintf("%s has no legal action", god.Name()), nil)
		return false
	}

	e.turn.GodActive = true
	if god.RestrictToOneWorker() {
		e.turn.Locked = w
	}
	e.turn.Phase = god.Phase()
	e.turn.actions = actions
	res.add(EventGodActivated, p.ID, fmt.Sprintf("%s uses %s", p.Name, god.Name()), nil)
	return true
}

func (e *GameEngine) enterMove() {
	e.turn.GodActive = false
	e.turn.Phase = PhaseMove
	e.turn.actions = asActions(e.turn.Selected.MoveActions())
}

// enterBuild starts the default build phase. A worker with no legal build
// and no helpful alternative loses its player the game.
func (e *GameEngine) enterBuild(res *Result) error {
	w := e.turn.Selected
	builds := w.BuildActions()

	e.turn.GodActive = false
	e.turn.Helpful = false
	e.turn.Phase = PhaseBuild
	e.turn.actions = asActions(builds)

	if countValid(builds) > 0 {
		return nil
	}
	if w.Owner().HelpfulTokens > 0 && countValid(w.HelpfulBuildActions()) > 0 {
		return nil
	}
	return e.eliminateCurrent("worker cannot build", res)
}

func (e *GameEngine) endTurn(res *Result) error {
	p := e.CurrentPlayer()
	for _, w := range p.Workers {
		w.history.reset()
	}
	res.add(EventTurnEnded, p.ID, fmt.Sprintf("%s ended the turn", p.Name), nil)
	return e.advance(res)
}

// advance runs the elimination sweep and hands the turn to the next player
// still in the rotation. The player who just played is swept last, so when
// every opponent is blocked at once the mover wins.
func (e *GameEngine) advance(res *Result) error {
	order := make([]*Player, 0, len(e.players))
	for i := 1; i <= len(e.players); i++ {
		order = append(order, e.players[(e.current+i)%len(e.players)])
	}
	if err := e.sweep(order, res); err != nil {
		return err
	}
	if e.winner != nil {
		return nil
	}

	for i := 1; i <= len(e.players); i++ {
		next := (e.current + i) % len(e.players)
		if !e.players[next].eliminated {
			e.current = next
			break
		}
	}
	e.turn = newTurnState(PhaseSelect)
	return nil
}

func (e *GameEngine) sweep(order []*Player, res *Result) error {
	for _, p := range order {
		if e.winner != nil {
			return nil
		}
		if p.eliminated || e.canMove(p) {
			continue
		}
		if err := e.eliminate(p, "no worker can move", res); err != nil {
			return err
		}
	}
	return nil
}

// canMove reports whether any of p's workers has a valid move, counting
// moves a god power would offer on selection
func (e *GameEngine) canMove(p *Player) bool {
	for _, w := range p.Workers {
		if !w.IsPlaced() {
			continue
		}
		if countValid(w.MoveActions()) > 0 {
			return true
		}
		god := p.God
		if god != nil && god.Phase() == PhaseMove && god.Condition(w, w.History()) && countValid(god.Actions(w, w.History())) > 0 {
			return true
		}
	}
	return false
}

// eliminate removes p from the rotation and its workers from the board
func (e *GameEngine) eliminate(p *Player, reason string, res *Result) error {
	p.eliminated = true
	p.outReason = reason
	for _, w := range p.Workers {
		if !w.IsPlaced() {
			continue
		}
		if err := e.board.RemoveWorker(w.ID); err != nil {
			return err
		}
	}
	res.add(EventEliminated, p.ID, fmt.Sprintf("%s is eliminated: %s", p.Name, reason), nil)

	var remaining []*Player
	for _, other := range e.players {
		if !other.eliminated {
			remaining = append(remaining, other)
		}
	}
	if len(remaining) == 1 {
		e.declareWinner(remaining[0], res)
	}
	return nil
}

// eliminateCurrent eliminates the player whose turn it is and passes the turn
func (e *GameEngine) eliminateCurrent(reason string, res *Result) error {
	p := e.CurrentPlayer()
	for _, w := range p.Workers {
		w.history.reset()
	}
	if err := e.eliminate(p, reason, res); err != nil {
		return err
	}
	if e.winner != nil {
		return nil
	}
	if e.turn.Phase == PhasePlace {
		return e.nextPlacer(res)
	}
	return e.advance(res)
}

func (e *GameEngine) declareWinner(p *Player, res *Result) {
	e.winner = p
	e.turn.Phase = PhaseGameOver
	e.turn.Offer = nil
	e.turn.actions = nil
	res.add(EventVictory, p.ID, fmt.Sprintf("%s wins", p.Name), nil)
}

// refreshPlacements offers the next unplaced worker of the current player
func (e *GameEngine) refreshPlacements() {
	w := e.CurrentPlayer().nextUnplaced()
	if w == nil {
		e.turn.actions = nil
		return
	}
	e.turn.Selected = w
	e.turn.actions = asActions(w.PlaceActions())
}

func (e *GameEngine) nextPlacer(res *Result) error {
	for next := e.current + 1; next < len(e.players); next++ {
		if e.players[next].eliminated {
			continue
		}
		e.current = next
		e.turn = newTurnState(PhasePlace)
		e.refreshPlacements()
		return nil
	}
	return e.startPlay(res)
}

// startPlay begins the first turn once every worker is on the board
func (e *GameEngine) startPlay(res *Result) error {
	for _, w := range e.workers {
		w.history.reset()
	}
	e.current = 0
	e.turn = newTurnState(PhaseSelect)

	order := make([]*Player, len(e.players))
	copy(order, e.players)
	if err := e.sweep(order, res); err != nil {
		return err
	}
	if e.winner == nil && e.CurrentPlayer().eliminated {
		for i, p := range e.players {
			if !p.eliminated {
				e.current = i
				break
			}
		}
	}
	return nil
}
