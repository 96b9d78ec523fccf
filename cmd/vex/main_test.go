package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vex/pkg/vex"
)

func TestCompileSourceValidProgram(t *testing.T) {
	c, program, err := compileSource(`let x = 1 + 2;`)
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.NotNil(t, program)
}

func TestCompileSourceParseError(t *testing.T) {
	_, _, err := compileSource(`let = ;`)
	assert.Error(t, err)
}

func TestExitCodeMapsStatuses(t *testing.T) {
	cases := []struct {
		status vex.Status
		want   int
	}{
		{vex.StatusOK, 0},
		{vex.StatusCompileError, 65},
		{vex.StatusRuntimeError, 70},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, exitCode(tc.status))
	}
}
