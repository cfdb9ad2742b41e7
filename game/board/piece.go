package board

import "fmt"

// PieceKind identifies a piece variant
type PieceKind string

const (
	Ground PieceKind = "ground"
	Tower  PieceKind = "tower"
	Dome   PieceKind = "dome"
	Ocean  PieceKind = "ocean"
	Worker PieceKind = "worker"

	// MaxTowerLevel is the highest tower block; a dome caps it
	MaxTowerLevel = 3
)

// PlayerID identifies a seat at the table (0-based)
type PlayerID int

// WorkerID identifies a worker in the board's worker arena
type WorkerID int

// Sex distinguishes the two workers of a player. Its value doubles as the
// worker's slot in the owner's pair.
type Sex int

const (
	Male Sex = iota
	Female
)

func (s Sex) String() string {
	if s == Female {
		return "female"
	}
	return "male"
}

// Partner returns the slot of the other worker in the pair
func (s Sex) Partner() Sex {
	if s == Female {
		return Male
	}
	return Female
}

// Traits are the fixed rule flags of a piece variant
type Traits struct {
	Traversable bool
	Buildable   bool
	Removable   bool
}

var pieceTraits = map[PieceKind]Traits{
	Ground: {Traversable: true, Buildable: true, Removable: false},
	Tower:  {Traversable: true, Buildable: true, Removable: true},
	Dome:   {Traversable: false, Buildable: false, Removable: false},
	Ocean:  {Traversable: false, Buildable: false, Removable: false},
	Worker: {Traversable: false, Buildable: false, Removable: false},
}

// Piece is a tagged variant. Level is set for towers only; Owner and Sex
// for workers only.
type Piece struct {
	Kind  PieceKind `json:"kind"`
	Level int       `json:"level,omitempty"`
	ID    WorkerID  `json:"id,omitempty"`
	Owner PlayerID  `json:"owner,omitempty"`
	Sex   Sex       `json:"sex,omitempty"`
}

// NewGround returns the permanent base of a playable space
func NewGround() Piece { return Piece{Kind: Ground} }

// NewOcean returns the permanent base of a border space
func NewOcean() Piece { return Piece{Kind: Ocean} }

// NewDome returns a dome
func NewDome() Piece { return Piece{Kind: Dome} }

// NewTower returns a tower block of the given level (1..3)
func NewTower(level int) Piece { return Piece{Kind: Tower, Level: level} }

// NewWorker returns a worker piece
func NewWorker(id WorkerID, owner PlayerID, sex Sex) Piece {
	return Piece{Kind: Worker, ID: id, Owner: owner, Sex: sex}
}

// Traits returns the rule flags of the piece's variant
func (p Piece) Traits() Traits {
	return pieceTraits[p.Kind]
}

// Traversable reports whether a worker may stand on the piece
func (p Piece) Traversable() bool { return p.Traits().Traversable }

// Buildable reports whether a piece may be stacked on top
func (p Piece) Buildable() bool { return p.Traits().Buildable }

// Removable reports whether the piece may be popped off a stack
func (p Piece) Removable() bool { return p.Traits().Removable }

// Name is the human-readable variant name used in invalid-action reasons
func (p Piece) Name() string {
	switch p.Kind {
	case Ground:
		return "Ground"
	case Tower:
		return fmt.Sprintf("Tower %d", p.Level)
	case Dome:
		return "Dome"
	case Ocean:
		return "Ocean"
	case Worker:
		return "Worker"
	default:
		return "Piece"
	}
}

// Symbol is the single-character display form
func (p Piece) Symbol() rune {
	switch p.Kind {
	case Ground:
		return '.'
	case Tower:
		return rune('0' + p.Level)
	case Dome:
		return 'D'
	case Ocean:
		return 'O'
	case Worker:
		// Players are lettered from A; the female worker is lower case.
		r := rune('A' + int(p.Owner))
		if p.Sex == Female {
			r += 'a' - 'A'
		}
		return r
	default:
		return '?'
	}
}
