package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"limitfree/models"
	"limitfree/scoring"
	"limitfree/services"
)

func TestScoreResponses(t *testing.T) {
	banks := services.DefaultQuestionBanks()

	res, err := scoreResponses(banks, models.ModelInterest, scoring.ResponseSet{"1": 7, "2": 7})
	require.NoError(t, err)
	interest, ok := res.(scoring.InterestResult)
	require.True(t, ok)
	assert.Equal(t, "R", interest.Sorted[0])

	_, err = scoreResponses(banks, models.ModelTrait, scoring.ResponseSet{"O1": 8})
	assert.ErrorIs(t, err, scoring.ErrInvalidResponseValue)

	_, err = scoreResponses(banks, "mbti", nil)
	assert.ErrorIs(t, err, services.ErrInvalidModel)
}

func TestScoreCommand(t *testing.T) {
	configDir = t.TempDir()
	t.Cleanup(func() { configDir = "" })
	file := filepath.Join(t.TempDir(), "responses.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"O1": 7, "O2": 1}`), 0o644))

	cmd := newScoreCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--model", "ocean", "--file", file})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, int64(100), gjson.Get(out.String(), "scores.O").Int())
	assert.Equal(t, "O", gjson.Get(out.String(), "ranked.0").String())
}
