package compare

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/laptop-battle/internal/analysis"
)

type fakeRunner struct {
	outcomes map[string]*analysis.Outcome
	errs     map[string]error
	calls    int
}

func (f *fakeRunner) Run(_ context.Context, laptopName string) (*analysis.Outcome, error) {
	f.calls++
	if err := f.errs[laptopName]; err != nil {
		return nil, err
	}
	return f.outcomes[laptopName], nil
}

func scored(subject string, score int) *analysis.Outcome {
	return analysis.Succeeded(subject, &analysis.Report{
		LaptopName:     subject,
		SentimentScore: score,
	})
}

func TestCompareHigherScoreWins(t *testing.T) {
	runner := &fakeRunner{outcomes: map[string]*analysis.Outcome{
		"Laptop A": scored("laptop_a", 80),
		"Laptop B": scored("laptop_b", 65),
	}}

	res, err := New(runner, nil).Compare(context.Background(), "Laptop A", "Laptop B")
	require.NoError(t, err)

	assert.Equal(t, WinnerLaptop1, res.Comparison.Winner)
	assert.Equal(t, 15, res.Comparison.ScoreDifference)
	assert.Equal(t, 80, res.Comparison.Laptop1Score)
	assert.Equal(t, 65, res.Comparison.Laptop2Score)
}

func TestCompareEqualScoresTie(t *testing.T) {
	runner := &fakeRunner{outcomes: map[string]*analysis.Outcome{
		"Laptop A": scored("laptop_a", 70),
		"Laptop B": scored("laptop_b", 70),
	}}

	res, err := New(runner, nil).Compare(context.Background(), "Laptop A", "Laptop B")
	require.NoError(t, err)

	assert.Equal(t, WinnerTie, res.Comparison.Winner)
	assert.Zero(t, res.Comparison.ScoreDifference)
}

func TestCompareNoDataSideScoresZero(t *testing.T) {
	runner := &fakeRunner{outcomes: map[string]*analysis.Outcome{
		"Laptop A": analysis.NoData("laptop_a"),
		"Laptop B": scored("laptop_b", 40),
	}}

	res, err := New(runner, nil).Compare(context.Background(), "Laptop A", "Laptop B")
	require.NoError(t, err)

	assert.Equal(t, WinnerLaptop2, res.Comparison.Winner)
	assert.Equal(t, 40, res.Comparison.ScoreDifference)
	assert.Equal(t, analysis.StatusNoData, res.Laptop1.Status)
}

func TestCompareSameSubjectRejected(t *testing.T) {
	runner := &fakeRunner{}

	cases := []struct {
		name             string
		laptop1, laptop2 string
	}{
		{"identical", "Laptop A", "Laptop A"},
		{"case and punctuation variants", "Legion Y540!", "Legion Y540"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(runner, nil).Compare(context.Background(), tc.laptop1, tc.laptop2)
			assert.Error(t, err)
		})
	}
	assert.Zero(t, runner.calls, "same-subject pairs must not start any pipeline")
}

func TestCompareRunnerErrorFailsComparison(t *testing.T) {
	runner := &fakeRunner{
		outcomes: map[string]*analysis.Outcome{"Laptop A": scored("laptop_a", 80)},
		errs:     map[string]error{"Laptop B": errors.New("data dir unwritable")},
	}

	_, err := New(runner, nil).Compare(context.Background(), "Laptop A", "Laptop B")
	assert.Error(t, err)
}

func TestVerdictBothFailedTie(t *testing.T) {
	cmp := Verdict(
		analysis.Failed("laptop_a", errors.New("llm error"), ""),
		analysis.NoData("laptop_b"),
	)
	assert.Equal(t, WinnerTie, cmp.Winner)
	assert.Zero(t, cmp.ScoreDifference)
}
