package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/pkg/distlock"
	"github.com/aoe-motors/lead-tracker/internal/service/scoring"
)

type fakeRescorer struct {
	dryRuns []bool
	errs    map[string]error
}

func (f *fakeRescorer) Rescore(_ context.Context, id string, dryRun bool) (*scoring.RescoreResult, error) {
	f.dryRuns = append(f.dryRuns, dryRun)
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return &scoring.RescoreResult{
		RequestID: id, Events: 3,
		PreviousScore: 2, PreviousTier: domain.TierCold,
		Score: 5, Tier: domain.TierWarm,
		Changed: true, DryRun: dryRun,
	}, nil
}

func run(t *testing.T, r rescorer, args ...string) (string, string, error) {
	t.Helper()
	closed := false
	root := newRootCmd(func(context.Context) (rescorer, func(), error) {
		return r, func() { closed = true }, nil
	})
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	if len(args) > 0 && args[0] == "rescore" && r != nil {
		assert.True(t, closed, "stores should be closed")
	}
	return out.String(), errOut.String(), err
}

func TestClassify(t *testing.T) {
	out, _, err := run(t, nil, "classify", "opened")
	require.NoError(t, err)
	assert.Equal(t, "opened: +1 on first occurrence only (click=false)\n", out)

	out, _, err = run(t, nil, "classify", "clicked_pdf")
	require.NoError(t, err)
	assert.Equal(t, "clicked_pdf: +2 every time (click=true)\n", out)

	out, _, err = run(t, nil, "classify", "clicked_banner")
	require.NoError(t, err)
	assert.Equal(t, "clicked_banner: not scored (click=true)\n", out)
}

func TestClassify_RequiresOneArg(t *testing.T) {
	_, _, err := run(t, nil, "classify")
	assert.Error(t, err)
}

func TestRescore_DryRun(t *testing.T) {
	f := &fakeRescorer{}
	out, _, err := run(t, f, "rescore", "--dry-run", "req-1")
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, f.dryRuns)
	assert.Equal(t, "req-1: would change 2/Cold -> 5/Warm (3 events)\n", out)
}

func TestRescore_JSON(t *testing.T) {
	out, _, err := run(t, &fakeRescorer{}, "rescore", "--json", "req-1")
	require.NoError(t, err)
	var res scoring.RescoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 5, res.Score)
	assert.False(t, res.DryRun)
}

func TestRescore_PartialFailure(t *testing.T) {
	f := &fakeRescorer{errs: map[string]error{
		"busy": distlock.ErrNotAcquired,
		"gone": errors.New("lead not found"),
	}}
	out, errOut, err := run(t, f, "rescore", "ok", "busy", "gone")
	assert.EqualError(t, err, "2 of 3 leads failed")
	assert.Contains(t, out, "ok: updated")
	assert.Contains(t, errOut, "busy: another rescore holds the lock")
	assert.Contains(t, errOut, "gone: lead not found")
}

func TestRescore_OpenFailure(t *testing.T) {
	root := newRootCmd(func(context.Context) (rescorer, func(), error) {
		return nil, nil, errors.New("no database")
	})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"rescore", "x"})
	assert.EqualError(t, root.Execute(), "no database")
}
