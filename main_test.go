package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintCauses(t *testing.T) {
	root := errors.New("document not found")
	catalog := errors.New("unable to read root catalog")
	err := fmt.Errorf("%w /bucket/catalog.json: %w", catalog, fmt.Errorf("open: %w", root))

	var out bytes.Buffer
	printCauses(&out, err, 0)

	assert.Equal(t, "caused by: unable to read root catalog\n"+
		"caused by: open: document not found\n"+
		"  caused by: document not found\n", out.String())
}
