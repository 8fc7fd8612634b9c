package partitioner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/Partitionx/pkg/util"
	pkgerrors "github.com/pkg/errors"
)

var ErrMalformedPartition = errors.New("malformed partition file")

/*
partition file format:

	<cutsize>
	<block of cell 0>
	...
	<block of cell n-1>
*/
func WritePartition(w io.Writer, result *FinalResult) error {
	bw := bufio.NewWriter(w)

	_, err := bw.WriteString(fmt.Sprintf("%d\n", result.Cutsize))
	if err != nil {
		return err
	}

	for _, b := range result.Assignment {
		_, err := bw.WriteString(fmt.Sprintf("%d\n", b))
		if err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WritePartitionFile writes result to filename, bzip2 compressed when the name ends with ".bz2".
func WritePartitionFile(filename string, result *FinalResult) (err error) {
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
		return WritePartition(f, result)
	}

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	if err := WritePartition(bz, result); err != nil {
		bz.Close()
		return err
	}
	return bz.Close()
}

// ReadPartition parses a partition file for a hypergraph with numCells cells.
func ReadPartition(r io.Reader, numCells int) (*FinalResult, error) {
	br := bufio.NewReader(r)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, pkgerrors.Wrap(ErrMalformedPartition, "missing cutsize line")
	}
	cutsize, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrMalformedPartition, "bad cutsize %q", line)
	}

	result := &FinalResult{Cutsize: cutsize, Assignment: make([]Block, numCells)}
	for c := 0; c < numCells; c++ {
		line, err = util.ReadLine(br)
		if err != nil {
			return nil, pkgerrors.Wrapf(ErrMalformedPartition, "expected %d cells, found %d", numCells, c)
		}
		switch strings.TrimSpace(line) {
		case "0":
			result.Assignment[c] = BLOCK_ZERO
		case "1":
			result.Assignment[c] = BLOCK_ONE
		default:
			return nil, pkgerrors.Wrapf(ErrMalformedPartition, "cell %d: bad block %q", c, line)
		}
	}
	return result, nil
}

// ReadPartitionFile reads a partition written by WritePartitionFile.
func ReadPartitionFile(filename string, numCells int) (*FinalResult, error) {
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

	result, err := ReadPartition(r, numCells)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "reading %s", filename)
	}
	return result, nil
}
