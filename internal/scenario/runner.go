// Package scenario runs bulk validation scenarios against the
// recommendation engine. A scenario names a purchase, a candidate card
// lineup, a pre-accumulated monthly spend and the expected winner; the
// runner replays each one and scores the outcome. This is experimentation
// scaffolding around the engine, not part of the decision core.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"cardrec/internal/engine"
	"cardrec/internal/ledger"
	"cardrec/internal/logging"
	"cardrec/internal/models"
)

// Scenario is one row of the validation CSV.
type Scenario struct {
	TestID         string `csv:"test_id"`
	Name           string `csv:"scenario"`
	Merchant       string `csv:"merchant"`
	Amount         string `csv:"amount"`
	UserCards      string `csv:"user_cards"`
	MonthSpent     string `csv:"current_month_spent"`
	ExpectedWinner string `csv:"expected_winner"`
	ExpectedReward string `csv:"expected_reward"`
}

// Result is the scored outcome of one scenario.
type Result struct {
	TestID   string `csv:"test_id"`
	Name     string `csv:"scenario"`
	Expected string `csv:"expected"`
	Got      string `csv:"got"`
	Status   string `csv:"status"`
	Accuracy int    `csv:"accuracy"`
}

// Scoring statuses. PASS requires the right card and the right reward
// (within tolerance); PARTIAL means the right card with a wrong amount.
const (
	StatusPass    = "PASS"
	StatusPartial = "PARTIAL"
	StatusFail    = "FAIL"
)

// rewardTolerance absorbs rounding differences between the expected values
// recorded in scenario files and the engine's 2-decimal output.
var rewardTolerance = decimal.NewFromFloat(0.02)

// Report aggregates scenario results.
type Report struct {
	Results []Result
}

// Accuracy returns the mean accuracy percentage over all results, zero for
// an empty report.
func (r Report) Accuracy() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	total := 0
	for _, res := range r.Results {
		total += res.Accuracy
	}
	return float64(total) / float64(len(r.Results))
}

// Runner replays scenarios against a Recommender.
type Runner struct {
	rec engine.Recommender
	log logging.Logger
}

// NewRunner creates a Runner.
func NewRunner(rec engine.Recommender, log logging.Logger) *Runner {
	return &Runner{rec: rec, log: log}
}

// LoadScenarios reads a scenario CSV file.
func LoadScenarios(path string) ([]Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenarios file: %w", err)
	}
	defer file.Close()

	var scenarios []Scenario
	if err := gocsv.UnmarshalFile(file, &scenarios); err != nil {
		return nil, fmt.Errorf("parsing scenarios file %s: %w", path, err)
	}
	return scenarios, nil
}

// Run replays every scenario and scores it.
func (r *Runner) Run(scenarios []Scenario) (Report, error) {
	report := Report{Results: make([]Result, 0, len(scenarios))}
	for _, sc := range scenarios {
		result, err := r.runOne(sc)
		if err != nil {
			return Report{}, fmt.Errorf("scenario %s: %w", sc.TestID, err)
		}
		report.Results = append(report.Results, result)
	}
	r.log.WithFields(
		logging.Field{Key: "scenarios", Value: len(scenarios)},
		logging.Field{Key: "accuracy", Value: report.Accuracy()},
	).Info("Scenario suite completed")
	return report, nil
}

func (r *Runner) runOne(sc Scenario) (Result, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(sc.Amount))
	if err != nil {
		return Result{}, fmt.Errorf("bad amount %q: %w", sc.Amount, err)
	}
	snap, err := parseMonthSpent(sc.MonthSpent)
	if err != nil {
		return Result{}, err
	}

	purchase := models.Purchase{Merchant: sc.Merchant, Amount: amount}
	recs, err := r.rec.Recommend(splitCards(sc.UserCards), purchase, snap)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		TestID:   sc.TestID,
		Name:     sc.Name,
		Expected: fmt.Sprintf("%s %s", sc.ExpectedWinner, sc.ExpectedReward),
	}
	if len(recs) == 0 {
		result.Got = "no recommendation"
		result.Status = StatusFail
		return result, nil
	}

	top := recs[0]
	result.Got = fmt.Sprintf("%s %s", top.CardID, top.Reward.StringFixed(2))

	expectedReward, err := decimal.NewFromString(strings.TrimSpace(sc.ExpectedReward))
	if err != nil {
		return Result{}, fmt.Errorf("bad expected reward %q: %w", sc.ExpectedReward, err)
	}
	cardOK := top.CardID == strings.TrimSpace(sc.ExpectedWinner)
	rewardOK := top.Reward.Sub(expectedReward).Abs().LessThanOrEqual(rewardTolerance)

	switch {
	case cardOK && rewardOK:
		result.Status = StatusPass
		result.Accuracy = 100
	case cardOK:
		result.Status = StatusPartial
		result.Accuracy = 75
	default:
		result.Status = StatusFail
	}
	return result, nil
}

// WriteReport writes the report as CSV.
func WriteReport(path string, report Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&report.Results, file); err != nil {
		return fmt.Errorf("writing report file %s: %w", path, err)
	}
	return nil
}

// parseMonthSpent decodes the scenario's accumulated-spend column: a JSON
// object keyed by "cardID:category" with numeric amounts.
func parseMonthSpent(raw string) (ledger.Snapshot, error) {
	snap := make(ledger.Snapshot)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return snap, nil
	}

	var spent map[string]json.Number
	if err := json.Unmarshal([]byte(raw), &spent); err != nil {
		return nil, fmt.Errorf("bad current_month_spent %q: %w", raw, err)
	}
	for field, value := range spent {
		cardID, category, ok := strings.Cut(field, ":")
		if !ok {
			return nil, fmt.Errorf("bad spend key %q: want cardID:category", field)
		}
		amount, err := decimal.NewFromString(value.String())
		if err != nil {
			return nil, fmt.Errorf("bad spend amount %q: %w", value, err)
		}
		snap[ledger.Key{CardID: cardID, Category: category}] = amount
	}
	return snap, nil
}

func splitCards(raw string) []string {
	parts := strings.Split(raw, ",")
	cards := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cards = append(cards, p)
		}
	}
	return cards
}
