package board

import "fmt"

// Coordinate is a 0-based row/column pair on the board
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// At is shorthand for Coordinate{Row: row, Col: col}
func At(row, col int) Coordinate {
	return Coordinate{Row: row, Col: col}
}

// Adjacent8 returns the eight surrounding coordinates in row-major order,
// skipping the coordinate itself
func (c Coordinate) Adjacent8() [8]Coordinate {
	var out [8]Coordinate
	i := 0
	for row := c.Row - 1; row <= c.Row+1; row++ {
		for col := c.Col - 1; col <= c.Col+1; col++ {
			if row == c.Row && col == c.Col {
				continue
			}
			out[i] = Coordinate{Row: row, Col: col}
			i++
		}
	}
	return out
}

// Adjacent4 returns the orthogonal neighbours: up, left, down, right
func (c Coordinate) Adjacent4() [4]Coordinate {
	return [4]Coordinate{
		{Row: c.Row - 1, Col: c.Col}, // up
		{Row: c.Row, Col: c.Col - 1}, // left
		{Row: c.Row + 1, Col: c.Col}, // down
		{Row: c.Row, Col: c.Col + 1}, // right
	}
}

// IsAdjacent reports whether other is one of the eight neighbours of c
func (c Coordinate) IsAdjacent(other Coordinate) bool {
	dr := abs(c.Row - other.Row)
	dc := abs(c.Col - other.Col)
	return (dr != 0 || dc != 0) && dr <= 1 && dc <= 1
}

// String renders the coordinate as (row,col)
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
