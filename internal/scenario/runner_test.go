package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardrec/internal/engine"
	"cardrec/internal/logging"
	"cardrec/internal/models"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := dec(t, s)
	return &d
}

func testRanker(t *testing.T) *engine.Ranker {
	t.Helper()
	cards := map[string]models.CardProduct{
		"hdfc_diners_black": {
			ID:          "hdfc_diners_black",
			DisplayName: "HDFC Diners Club Black",
			Issuer:      "HDFC Bank",
			AnnualFee:   10000,
			CategoryRules: map[string]models.RewardRule{
				"dining":             {Type: models.RewardPercentage, Rate: dec(t, "6.6"), MonthlyCap: decPtr(t, "1000")},
				models.CategoryOther: {Type: models.RewardPercentage, Rate: dec(t, "3.33")},
			},
		},
		"axis_ace": {
			ID:          "axis_ace",
			DisplayName: "Axis ACE",
			Issuer:      "Axis Bank",
			AnnualFee:   499,
			CategoryRules: map[string]models.RewardRule{
				"utilities":          {Type: models.RewardPercentage, Rate: dec(t, "5"), MonthlyCap: decPtr(t, "500")},
				models.CategoryOther: {Type: models.RewardPercentage, Rate: dec(t, "1.5")},
			},
		},
	}
	mappings := []models.MerchantMapping{
		{Keyword: "swiggy", Category: "dining"},
		{Keyword: "zomato", Category: "dining"},
	}
	log := &logging.MockLogger{}
	return engine.NewRanker(cards, engine.NewResolver(mappings, log), engine.NewEvaluator(log), log)
}

func TestLoadScenarios(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios.csv"))
	require.NoError(t, err)
	require.Len(t, scenarios, 5)

	assert.Equal(t, "T1", scenarios[0].TestID)
	assert.Equal(t, "Swiggy", scenarios[0].Merchant)
	assert.Equal(t, "hdfc_diners_black,axis_ace", scenarios[0].UserCards)
	assert.Equal(t, `{"hdfc_diners_black:dining": 950}`, scenarios[1].MonthSpent)
}

func TestLoadScenariosMissingFile(t *testing.T) {
	_, err := LoadScenarios(filepath.Join("testdata", "nope.csv"))
	assert.Error(t, err)
}

func TestRunnerScoring(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios.csv"))
	require.NoError(t, err)

	runner := NewRunner(testRanker(t), &logging.MockLogger{})
	report, err := runner.Run(scenarios)
	require.NoError(t, err)
	require.Len(t, report.Results, 5)

	byID := make(map[string]Result, len(report.Results))
	for _, res := range report.Results {
		byID[res.TestID] = res
	}

	// Right card, right reward.
	assert.Equal(t, StatusPass, byID["T1"].Status)
	assert.Equal(t, 100, byID["T1"].Accuracy)
	assert.Equal(t, "hdfc_diners_black 66.00", byID["T1"].Got)

	// Cap exhaustion flips the winner.
	assert.Equal(t, StatusPass, byID["T2"].Status)
	assert.Equal(t, "axis_ace 12.00", byID["T2"].Got)

	// Unmapped merchant scores on the fallback rate.
	assert.Equal(t, StatusPass, byID["T3"].Status)
	assert.Equal(t, "hdfc_diners_black 16.65", byID["T3"].Got)

	// Right card, reward off by more than the tolerance.
	assert.Equal(t, StatusPartial, byID["T4"].Status)
	assert.Equal(t, 75, byID["T4"].Accuracy)

	// Wrong card entirely.
	assert.Equal(t, StatusFail, byID["T5"].Status)
	assert.Equal(t, 0, byID["T5"].Accuracy)

	// 100 + 100 + 100 + 75 + 0 over five scenarios.
	assert.InDelta(t, 75.0, report.Accuracy(), 0.01)
}

func TestRunnerRewardTolerance(t *testing.T) {
	runner := NewRunner(testRanker(t), &logging.MockLogger{})
	report, err := runner.Run([]Scenario{{
		TestID:         "TOL",
		Name:           "Within tolerance",
		Merchant:       "Swiggy",
		Amount:         "1000",
		UserCards:      "hdfc_diners_black",
		ExpectedWinner: "hdfc_diners_black",
		ExpectedReward: "66.01",
	}})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, StatusPass, report.Results[0].Status)
}

func TestRunnerBadAmount(t *testing.T) {
	runner := NewRunner(testRanker(t), &logging.MockLogger{})
	_, err := runner.Run([]Scenario{{TestID: "B1", Merchant: "Swiggy", Amount: "abc", UserCards: "axis_ace", ExpectedWinner: "axis_ace", ExpectedReward: "1"}})
	assert.Error(t, err)
}

func TestRunnerBadSpendKey(t *testing.T) {
	runner := NewRunner(testRanker(t), &logging.MockLogger{})
	_, err := runner.Run([]Scenario{{
		TestID:         "B2",
		Merchant:       "Swiggy",
		Amount:         "100",
		UserCards:      "axis_ace",
		MonthSpent:     `{"axis_ace": 50}`,
		ExpectedWinner: "axis_ace",
		ExpectedReward: "1.50",
	}})
	assert.Error(t, err)
}

func TestRunnerNoCandidates(t *testing.T) {
	runner := NewRunner(testRanker(t), &logging.MockLogger{})
	report, err := runner.Run([]Scenario{{
		TestID:         "E1",
		Merchant:       "Swiggy",
		Amount:         "100",
		UserCards:      "unknown_card",
		ExpectedWinner: "axis_ace",
		ExpectedReward: "1.50",
	}})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, StatusFail, report.Results[0].Status)
	assert.Equal(t, "no recommendation", report.Results[0].Got)
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	report := Report{Results: []Result{
		{TestID: "T1", Name: "Dining within cap", Expected: "hdfc_diners_black 66.00", Got: "hdfc_diners_black 66.00", Status: StatusPass, Accuracy: 100},
	}}

	require.NoError(t, WriteReport(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "test_id")
	assert.Contains(t, string(data), "T1")
}

func TestReportAccuracyEmpty(t *testing.T) {
	assert.Zero(t, Report{}.Accuracy())
}

func TestParseMonthSpent(t *testing.T) {
	snap, err := parseMonthSpent(`{"hdfc_diners_black:dining": 950, "axis_ace:utilities": 123.45}`)
	require.NoError(t, err)
	assert.True(t, snap.Get("hdfc_diners_black", "dining").Equal(dec(t, "950")))
	assert.True(t, snap.Get("axis_ace", "utilities").Equal(dec(t, "123.45")))

	empty, err := parseMonthSpent("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = parseMonthSpent("not json")
	assert.Error(t, err)
}

func TestSplitCards(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitCards(" a , b ,"))
	assert.Empty(t, splitCards(""))
}
