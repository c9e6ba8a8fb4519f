package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arup-group/social-data-cli/internal/indicator"
)

func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.Flags().Float64("pct-burdened", 0, "")
	cmd.Flags().StringArray("weight", nil, "")
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return cmd
}

func TestFloat64FlagUnsetUsesFallback(t *testing.T) {
	cmd := newFlagCmd(t)
	assert.Equal(t, 50.0, float64Flag(cmd, "pct-burdened", 50))
}

func TestFloat64FlagExplicitZeroHonored(t *testing.T) {
	cmd := newFlagCmd(t, "--pct-burdened", "0")
	assert.Equal(t, 0.0, float64Flag(cmd, "pct-burdened", 50))
}

func TestFloat64FlagExplicitValue(t *testing.T) {
	cmd := newFlagCmd(t, "--pct-burdened", "30")
	assert.Equal(t, 30.0, float64Flag(cmd, "pct-burdened", 50))
}

func TestParseWeights(t *testing.T) {
	cmd := newFlagCmd(t,
		"--weight", "People of Color (%)=50",
		"--weight", "Low-Income (%)=50",
	)

	weights, err := parseWeights(cmd)
	require.NoError(t, err)
	require.Len(t, weights, 2)
	assert.Equal(t, 50.0, weights[indicator.PeopleOfColor])
	assert.Equal(t, 50.0, weights[indicator.LowIncome])
}

func TestParseWeightsMalformed(t *testing.T) {
	cmd := newFlagCmd(t, "--weight", "People of Color (%)")
	_, err := parseWeights(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"Travis County", "Harris County"},
		splitAndTrim(" Travis County , Harris County ,"))
	assert.Nil(t, splitAndTrim(""))
}
