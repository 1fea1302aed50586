package controler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/internetarchive/linzstac/internal/pkg/config"
	"github.com/internetarchive/linzstac/internal/pkg/download"
	"github.com/internetarchive/linzstac/internal/pkg/tiles"
)

// ErrInvalidSelection is returned when the answer to the prompt is not an index
var ErrInvalidSelection = errors.New("invalid selection")

// selectIndexes returns the groups to process, from the selection flags or
// by prompting on in.
func selectIndexes(cfg *config.Config, groups []tiles.TileGroup, in io.Reader, out io.Writer) ([]int, error) {
	var index int

	switch {
	case cfg.ByAll:
		indexes := make([]int, len(groups))
		for i := range groups {
			indexes[i] = i
		}
		return indexes, nil
	case cfg.First:
		index = 0
	case cfg.BySize:
		index = largestGroup(groups)
	case cfg.Index >= 0:
		index = cfg.Index
	default:
		var err error
		index, err = prompt(in, out)
		if err != nil {
			return nil, err
		}
	}

	if index < 0 || index >= len(groups) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", download.ErrIndexOutOfRange, index, len(groups))
	}

	return []int{index}, nil
}

// largestGroup returns the index of the group with the most assets, the
// first one on ties.
func largestGroup(groups []tiles.TileGroup) int {
	largest := 0
	for i, group := range groups {
		if len(group.Hrefs) > len(groups[largest].Hrefs) {
			largest = i
		}
	}
	return largest
}

func prompt(in io.Reader, out io.Writer) (int, error) {
	fmt.Fprint(out, "Please choose a dataset (enter index): ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}

	index, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an index", ErrInvalidSelection, strings.TrimSpace(line))
	}

	return index, nil
}
