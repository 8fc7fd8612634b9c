package datastructure

import (
	"errors"
	"math"

	pkgerrors "github.com/pkg/errors"
)

type Index uint32

const INVALID_INDEX = Index(math.MaxUint32)

var ErrMalformedNetlist = errors.New("malformed netlist")

/*
Hypergraph. immutable cell/net incidence stored as two compressed sparse rows:
cellNets[cellNetOffsets[c]:cellNetOffsets[c+1]] are the nets of cell c and
netCells[netCellOffsets[n]:netCellOffsets[n+1]] are the cells of net n.
ids are positions in these arrays, there are no pointers between cells and nets.
*/
type Hypergraph struct {
	numCells       int
	cellNetOffsets []Index
	cellNets       []Index
	netCellOffsets []Index
	netCells       []Index
	pmax           int
}

// NewHypergraph builds the incidence arrays. nets[i] lists the cells of net i.
// every net must be nonempty, reference cells in [0,numCells) and mention a cell at most once.
func NewHypergraph(numCells int, nets [][]Index) (*Hypergraph, error) {
	if numCells <= 0 {
		return nil, pkgerrors.Wrapf(ErrMalformedNetlist, "number of cells must be positive, got %d", numCells)
	}
	if uint64(numCells) > math.MaxUint32 || uint64(len(nets)) > math.MaxUint32 {
		return nil, pkgerrors.Wrapf(ErrMalformedNetlist, "%d cells and %d nets do not fit 32 bit ids", numCells, len(nets))
	}
	numPins := 0
	for _, cells := range nets {
		numPins += len(cells)
	}
	if uint64(numPins) > math.MaxUint32 {
		return nil, pkgerrors.Wrapf(ErrMalformedNetlist, "%d pins do not fit 32 bit offsets", numPins)
	}

	seen := make([]int, numCells) // last net (1-based) that mentioned the cell
	degree := make([]Index, numCells)
	for netID, cells := range nets {
		if len(cells) == 0 {
			return nil, pkgerrors.Wrapf(ErrMalformedNetlist, "net %d has no cells", netID)
		}
		for _, c := range cells {
			if int(c) >= numCells {
				return nil, pkgerrors.Wrapf(ErrMalformedNetlist, "net %d: cell %d out of range [0,%d)", netID, c, numCells)
			}
			if seen[c] == netID+1 {
				return nil, pkgerrors.Wrapf(ErrMalformedNetlist, "net %d: cell %d listed twice", netID, c)
			}
			seen[c] = netID + 1
			degree[c]++
		}
	}

	hg := &Hypergraph{
		numCells:       numCells,
		cellNetOffsets: make([]Index, numCells+1),
		cellNets:       make([]Index, numPins),
		netCellOffsets: make([]Index, len(nets)+1),
		netCells:       make([]Index, 0, numPins),
	}

	for c := 0; c < numCells; c++ {
		hg.cellNetOffsets[c+1] = hg.cellNetOffsets[c] + degree[c]
		if int(degree[c]) > hg.pmax {
			hg.pmax = int(degree[c])
		}
	}

	fill := make([]Index, numCells)
	copy(fill, hg.cellNetOffsets[:numCells])
	for netID, cells := range nets {
		hg.netCells = append(hg.netCells, cells...)
		hg.netCellOffsets[netID+1] = Index(len(hg.netCells))
		for _, c := range cells {
			hg.cellNets[fill[c]] = Index(netID)
			fill[c]++
		}
	}

	return hg, nil
}

func (hg *Hypergraph) NumberOfCells() int {
	return hg.numCells
}

func (hg *Hypergraph) NumberOfNets() int {
	return len(hg.netCellOffsets) - 1
}

func (hg *Hypergraph) NumberOfPins() int {
	return len(hg.netCells)
}

// GetPmax returns the maximum number of nets incident to a single cell.
func (hg *Hypergraph) GetPmax() int {
	return hg.pmax
}

// GetNetsOfCell returns the nets of cell c in increasing net id order. the slice must not be modified.
func (hg *Hypergraph) GetNetsOfCell(c Index) []Index {
	return hg.cellNets[hg.cellNetOffsets[c]:hg.cellNetOffsets[c+1]]
}

// GetCellsOfNet returns the cells of net n in input order. the slice must not be modified.
func (hg *Hypergraph) GetCellsOfNet(n Index) []Index {
	return hg.netCells[hg.netCellOffsets[n]:hg.netCellOffsets[n+1]]
}

func (hg *Hypergraph) NetSize(n Index) int {
	return int(hg.netCellOffsets[n+1] - hg.netCellOffsets[n])
}

func (hg *Hypergraph) ForNetsOfCell(c Index, handle func(net Index)) {
	for _, n := range hg.GetNetsOfCell(c) {
		handle(n)
	}
}

func (hg *Hypergraph) ForCellsOfNet(n Index, handle func(cell Index)) {
	for _, c := range hg.GetCellsOfNet(n) {
		handle(c)
	}
}
