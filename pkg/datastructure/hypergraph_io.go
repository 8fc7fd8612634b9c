package datastructure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/Partitionx/pkg/util"
	pkgerrors "github.com/pkg/errors"
)

/*
netlist text format:

	<numCells> <numNets> [ignored...]
	<k> <cell_1> ... <cell_k>        one line per net

files ending with ".bz2" are bzip2 compressed.
*/
func ReadNetlist(filename string) (*Hypergraph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(filename, ".bz2") {
		bz, err := bzip2.NewReader(f, nil)
		if err != nil {
			return nil, err
		}
		defer bz.Close()
		r = bz
	}

	hg, err := ParseNetlist(r)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "reading %s", filename)
	}
	return hg, nil
}

func ParseNetlist(r io.Reader) (*Hypergraph, error) {
	br := bufio.NewReader(r)

	line, err := nextNonEmptyLine(br)
	if err != nil {
		return nil, pkgerrors.Wrap(ErrMalformedNetlist, "missing header line")
	}
	tokens := util.Fields(line)
	if len(tokens) < 2 {
		return nil, pkgerrors.Wrapf(ErrMalformedNetlist, "header %q needs <numCells> <numNets>", line)
	}

	numCells, err := strconv.Atoi(tokens[0])
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrMalformedNetlist, "bad number of cells %q", tokens[0])
	}
	numNets, err := strconv.Atoi(tokens[1])
	if err != nil || numNets < 0 {
		return nil, pkgerrors.Wrapf(ErrMalformedNetlist, "bad number of nets %q", tokens[1])
	}

	nets := make([][]Index, numNets)
	for i := 0; i < numNets; i++ {
		line, err = nextNonEmptyLine(br)
		if err != nil {
			return nil, pkgerrors.Wrapf(ErrMalformedNetlist, "expected %d nets, found %d", numNets, i)
		}
		nets[i], err = parseNet(line)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "net %d", i)
		}
	}

	return NewHypergraph(numCells, nets)
}

func parseNet(line string) ([]Index, error) {
	tokens := util.Fields(line)
	k, err := strconv.Atoi(tokens[0])
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrMalformedNetlist, "bad net size %q", tokens[0])
	}
	if k != len(tokens)-1 {
		return nil, pkgerrors.Wrapf(ErrMalformedNetlist, "net size %d but %d cells listed", k, len(tokens)-1)
	}

	cells := make([]Index, k)
	for j, tok := range tokens[1:] {
		c, err := ParseIndex(tok)
		if err != nil {
			return nil, pkgerrors.Wrapf(ErrMalformedNetlist, "bad cell id %q", tok)
		}
		cells[j] = c
	}
	return cells, nil
}

func nextNonEmptyLine(br *bufio.Reader) (string, error) {
	for {
		line, err := util.ReadLine(br)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) != "" {
			return line, nil
		}
	}
}

func ParseIndex(s string) (Index, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return Index(v), nil
}

func WriteNetlist(w io.Writer, hg *Hypergraph) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%d %d\n", hg.NumberOfCells(), hg.NumberOfNets())
	for n := Index(0); n < Index(hg.NumberOfNets()); n++ {
		fmt.Fprintf(bw, "%d", hg.NetSize(n))
		hg.ForCellsOfNet(n, func(c Index) {
			fmt.Fprintf(bw, " %d", c)
		})
		fmt.Fprintf(bw, "\n")
	}

	return bw.Flush()
}

// WriteNetlistFile writes hg to filename, bzip2 compressed when the name ends with ".bz2".
func WriteNetlistFile(filename string, hg *Hypergraph) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !strings.HasSuffix(filename, ".bz2") {
		return WriteNetlist(f, hg)
	}

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	if err := WriteNetlist(bz, hg); err != nil {
		bz.Close()
		return err
	}
	return bz.Close()
}
