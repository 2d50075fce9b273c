// Package matrix builds the square asymmetric evidence matrix over the
// ordered category set.
//
// The grid partitions exactly into three sets: the upper triangle
// (reality-weighted), the lower triangle (intent-weighted), and the
// diagonal (self-consistency, evenly split). Construction is a pure
// single pass over the category ranks — identical inputs always produce
// an identical matrix.
package matrix

import (
	"fmt"
	"math"

	"github.com/driftlab/trustdebt/internal/config"
	"github.com/driftlab/trustdebt/internal/taxonomy"
)

// Triangle identifies which partition a cell belongs to.
type Triangle string

const (
	TriangleUpper    Triangle = "upper"
	TriangleLower    Triangle = "lower"
	TriangleDiagonal Triangle = "diagonal"
)

// TriangleFor returns the partition for a (row, col) rank pair.
func TriangleFor(row, col int) Triangle {
	switch {
	case row < col:
		return TriangleUpper
	case row > col:
		return TriangleLower
	default:
		return TriangleDiagonal
	}
}

// Cell is one entry of the evidence matrix. Read-only after Build.
type Cell struct {
	Row          int      `json:"row"` // 1-indexed category rank
	Col          int      `json:"col"`
	RowCode      string   `json:"row_code"`
	ColCode      string   `json:"col_code"`
	IntentValue  float64  `json:"intent_value"`
	RealityValue float64  `json:"reality_value"`
	Units        float64  `json:"units"`
	Triangle     Triangle `json:"triangle"`
}

// Statistics summarizes the triangle unit totals and the asymmetry check.
type Statistics struct {
	GrandTotalUnits      float64 `json:"grand_total_units"`
	UpperUnits           float64 `json:"upper_units"`
	LowerUnits           float64 `json:"lower_units"`
	DiagonalUnits        float64 `json:"diagonal_units"`
	AsymmetryRatio       float64 `json:"asymmetry_ratio"`
	TargetAsymmetryRatio float64 `json:"target_asymmetry_ratio"`
	AsymmetryError       float64 `json:"asymmetry_error"` // relative error vs target
	AsymmetryOK          bool    `json:"asymmetry_ok"`
}

// Block marks the row/column range covering one root category and all of
// its descendants. Used only for visual grouping (the "double-walled"
// submatrix borders) — it has no effect on the numbers.
type Block struct {
	RootCode string `json:"root_code"`
	Start    int    `json:"start"` // rank of the root itself
	End      int    `json:"end"`   // rank of its last descendant
}

// Matrix is the Matrix Builder stage artifact.
type Matrix struct {
	Dimensions int        `json:"dimensions"`
	Cells      []Cell     `json:"cells"`
	Statistics Statistics `json:"statistics"`
	Blocks     []Block    `json:"blocks"`
}

// Build constructs the N×N grid from the ordered category set and the
// per-category unit totals. The triangle unit budgets come from the
// configured split of the grand total, spread evenly across each
// triangle's cells, then divided between intent and reality by the
// configured dominance share.
func Build(cats []taxonomy.Category, unitTotals map[string]float64, cfg config.MatrixConfig) (Matrix, error) {
	n := len(cats)
	if n == 0 {
		return Matrix{}, fmt.Errorf("matrix: cannot build from an empty category set")
	}

	var grand float64
	for _, c := range cats {
		grand += unitTotals[c.Code]
	}

	upperCells := n * (n - 1) / 2
	lowerCells := upperCells
	diagCells := n

	var upperPerCell, lowerPerCell float64
	if upperCells > 0 {
		upperPerCell = grand * cfg.UpperShare / float64(upperCells)
		lowerPerCell = grand * cfg.LowerShare / float64(lowerCells)
	}
	diagPerCell := grand * cfg.DiagonalShare / float64(diagCells)

	m := Matrix{
		Dimensions: n,
		Cells:      make([]Cell, 0, n*n),
	}

	for row := 1; row <= n; row++ {
		for col := 1; col <= n; col++ {
			cell := Cell{
				Row:      row,
				Col:      col,
				RowCode:  cats[row-1].Code,
				ColCode:  cats[col-1].Code,
				Triangle: TriangleFor(row, col),
			}
			switch cell.Triangle {
			case TriangleUpper:
				cell.Units = upperPerCell
				cell.RealityValue = upperPerCell * cfg.Dominance
				cell.IntentValue = upperPerCell * (1 - cfg.Dominance)
			case TriangleLower:
				cell.Units = lowerPerCell
				cell.IntentValue = lowerPerCell * cfg.Dominance
				cell.RealityValue = lowerPerCell * (1 - cfg.Dominance)
			case TriangleDiagonal:
				cell.Units = diagPerCell
				cell.IntentValue = diagPerCell / 2
				cell.RealityValue = diagPerCell / 2
			}
			m.Cells = append(m.Cells, cell)
		}
	}

	m.Statistics = computeStatistics(m.Cells, cfg)
	m.Blocks = blockBoundaries(cats)
	return m, nil
}

// computeStatistics sums the triangle totals and evaluates the asymmetry
// ratio against the calibrated target. A failed check is recorded, never
// raised — downstream stages still run.
func computeStatistics(cells []Cell, cfg config.MatrixConfig) Statistics {
	s := Statistics{TargetAsymmetryRatio: cfg.TargetAsymmetry}

	for _, c := range cells {
		s.GrandTotalUnits += c.Units
		switch c.Triangle {
		case TriangleUpper:
			s.UpperUnits += c.Units
		case TriangleLower:
			s.LowerUnits += c.Units
		case TriangleDiagonal:
			s.DiagonalUnits += c.Units
		}
	}

	if s.LowerUnits > 0 {
		s.AsymmetryRatio = s.UpperUnits / s.LowerUnits
		s.AsymmetryError = math.Abs(s.AsymmetryRatio-cfg.TargetAsymmetry) / cfg.TargetAsymmetry
		s.AsymmetryOK = s.AsymmetryError < cfg.AsymmetryTolerance
	} else {
		// Degenerate grid (N=1 or zero units): no ratio to measure.
		s.AsymmetryRatio = 0
		s.AsymmetryError = 1
		s.AsymmetryOK = false
	}

	return s
}

// blockBoundaries finds, per root category, the rank range from the root
// to its last descendant in the canonical order.
func blockBoundaries(cats []taxonomy.Category) []Block {
	byRoot := make(map[string]*Block)
	var order []string

	for _, c := range cats {
		root := taxonomy.RootOf(c.Code)
		b, ok := byRoot[root]
		if !ok {
			b = &Block{RootCode: root, Start: c.Position, End: c.Position}
			byRoot[root] = b
			order = append(order, root)
			continue
		}
		if c.Position < b.Start {
			b.Start = c.Position
		}
		if c.Position > b.End {
			b.End = c.Position
		}
	}

	blocks := make([]Block, 0, len(order))
	for _, root := range order {
		blocks = append(blocks, *byRoot[root])
	}
	return blocks
}

// CellAt returns the cell at the given 1-indexed ranks, or false when
// out of range.
func (m Matrix) CellAt(row, col int) (Cell, bool) {
	if row < 1 || col < 1 || row > m.Dimensions || col > m.Dimensions {
		return Cell{}, false
	}
	return m.Cells[(row-1)*m.Dimensions+(col-1)], true
}

// AllZero reports whether every cell carries zero units. An all-zero
// matrix is structurally well-formed but never considered populated.
func (m Matrix) AllZero() bool {
	for _, c := range m.Cells {
		if c.Units != 0 {
			return false
		}
	}
	return true
}
