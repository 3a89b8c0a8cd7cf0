package budget_test

import (
	"context"
	"testing"
	"time"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/budget/store"
)

// Note: date and window helpers are defined in expand_test.go

func monthlyPattern(id budget.PatternID, amount budget.Amount, start budget.Date, day int) budget.AmountPattern {
	return budget.AmountPattern{
		ID:        id,
		Amount:    amount,
		StartDate: start,
		Recurrence: budget.DateRecurring{
			Interval: 1,
			Unit:     budget.UnitMonthly,
			Monthly:  budget.MonthlyFixedDay{Day: day},
		},
	}
}

func projectionBudget(lines ...budget.BudgetLine) budget.Budget {
	return budget.Budget{ID: "b1", Name: "Forecast", Currency: "DKK", Lines: lines}
}

func TestProject_ChainsBalancesAcrossPeriods(t *testing.T) {
	// GIVEN: +10000/month income and -3000/month expenses, opening balance 0
	// WHEN: Projecting January through March 2026
	// THEN: End balances 7000, 14000, 21000, each period starting where the
	//       previous ended

	b := projectionBudget(
		budget.BudgetLine{
			ID: "l-salary", BudgetID: "b1", Category: "income/salary",
			Direction: budget.DirectionIncome,
			Accounts:  []budget.AccountID{"acc-main"},
			Patterns:  []budget.AmountPattern{monthlyPattern("p-salary", 10_000_00, date(2026, time.January, 1), 1)},
		},
		budget.BudgetLine{
			ID: "l-rent", BudgetID: "b1", Category: "housing/rent",
			Direction: budget.DirectionExpense,
			Accounts:  []budget.AccountID{"acc-main"},
			Patterns:  []budget.AmountPattern{monthlyPattern("p-rent", -3_000_00, date(2026, time.January, 1), 1)},
		},
	)

	projector := budget.NewProjector(store.NewMemory(), weekendExpander())
	result, err := projector.Project(context.Background(), budget.ProjectionRequest{
		Budget: b,
		First:  budget.NewPeriod(2026, time.January),
		Last:   budget.NewPeriod(2026, time.March),
		Now:    date(2026, time.January, 10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Periods) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(result.Periods))
	}
	wantEnd := []budget.Amount{7_000_00, 14_000_00, 21_000_00}
	var prevEnd budget.Amount
	for i, pp := range result.Periods {
		if pp.ExpectedIncome != 10_000_00 {
			t.Errorf("period %d: expected income 1000000, got %d", i, pp.ExpectedIncome)
		}
		if pp.ExpectedExpense != -3_000_00 {
			t.Errorf("period %d: expected expenses -300000, got %d", i, pp.ExpectedExpense)
		}
		if pp.StartBalance != prevEnd {
			t.Errorf("period %d: expected start %d, got %d", i, prevEnd, pp.StartBalance)
		}
		if pp.EndBalance != wantEnd[i] {
			t.Errorf("period %d: expected end %d, got %d", i, wantEnd[i], pp.EndBalance)
		}
		if pp.Frozen {
			t.Errorf("period %d: expected live composition", i)
		}
		prevEnd = pp.EndBalance
	}
}

func TestProject_PastPeriodsReadFrozenSnapshots(t *testing.T) {
	// GIVEN: January 2026 archived, then the salary pattern edited
	// WHEN: Projecting January and February with "now" in February
	// THEN: January keeps the frozen amounts; February uses the edit

	ctx := context.Background()
	mem := store.NewMemory()
	expander := weekendExpander()

	b := projectionBudget(budget.BudgetLine{
		ID: "l-salary", BudgetID: "b1", Category: "income/salary",
		Direction: budget.DirectionIncome,
		Accounts:  []budget.AccountID{"acc-main"},
		Patterns:  []budget.AmountPattern{monthlyPattern("p-salary", 10_000_00, date(2026, time.January, 1), 1)},
	})
	if err := mem.SaveBudget(ctx, b); err != nil {
		t.Fatalf("save budget: %v", err)
	}
	if err := mem.SaveLine(ctx, b.Lines[0]); err != nil {
		t.Fatalf("save line: %v", err)
	}

	archiver := budget.NewArchiver(mem, expander)
	if _, err := archiver.ArchivePeriod(ctx, b.ID, budget.NewPeriod(2026, time.January)); err != nil {
		t.Fatalf("archive january: %v", err)
	}

	// A raise, applied after January was closed.
	raised := b.Lines[0]
	raised.Patterns = []budget.AmountPattern{monthlyPattern("p-salary", 12_000_00, date(2026, time.January, 1), 1)}
	if err := mem.SaveLine(ctx, raised); err != nil {
		t.Fatalf("update line: %v", err)
	}
	updated, err := mem.GetBudget(ctx, b.ID)
	if err != nil {
		t.Fatalf("load budget: %v", err)
	}

	projector := budget.NewProjector(mem, expander)
	result, err := projector.Project(ctx, budget.ProjectionRequest{
		Budget: *updated,
		First:  budget.NewPeriod(2026, time.January),
		Last:   budget.NewPeriod(2026, time.February),
		Now:    date(2026, time.February, 10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	january, february := result.Periods[0], result.Periods[1]
	if !january.Frozen {
		t.Error("expected January to come from the snapshot")
	}
	if january.ExpectedIncome != 10_000_00 {
		t.Errorf("expected frozen January income 1000000, got %d", january.ExpectedIncome)
	}
	if february.Frozen {
		t.Error("expected February to be composed live")
	}
	if february.ExpectedIncome != 12_000_00 {
		t.Errorf("expected live February income 1200000, got %d", february.ExpectedIncome)
	}
}

func TestProject_MissingSnapshotFallsBackToLive(t *testing.T) {
	// A past period without a snapshot still projects, from live patterns.
	b := projectionBudget(budget.BudgetLine{
		ID: "l-salary", BudgetID: "b1", Category: "income/salary",
		Direction: budget.DirectionIncome,
		Accounts:  []budget.AccountID{"acc-main"},
		Patterns:  []budget.AmountPattern{monthlyPattern("p-salary", 10_000_00, date(2026, time.January, 1), 1)},
	})

	projector := budget.NewProjector(store.NewMemory(), weekendExpander())
	result, err := projector.Project(context.Background(), budget.ProjectionRequest{
		Budget: b,
		First:  budget.NewPeriod(2026, time.January),
		Last:   budget.NewPeriod(2026, time.February),
		Now:    date(2026, time.February, 10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Periods[0].Frozen {
		t.Error("expected live fallback for the unarchived past period")
	}
	if result.Periods[0].ExpectedIncome != 10_000_00 {
		t.Errorf("expected income 1000000, got %d", result.Periods[0].ExpectedIncome)
	}
}

func TestProject_TransfersStayOutOfHeadlineTotals(t *testing.T) {
	// GIVEN: A 5000/month transfer from the main account to savings
	// WHEN: Projecting one period
	// THEN: Income and expenses stay zero; only the account deltas move

	b := projectionBudget(budget.BudgetLine{
		ID: "l-save", BudgetID: "b1", Category: "transfer/savings",
		Direction: budget.DirectionTransfer,
		Accounts:  []budget.AccountID{"acc-main", "acc-savings"},
		Patterns:  []budget.AmountPattern{monthlyPattern("p-save", 5_000_00, date(2026, time.January, 1), 1)},
	})

	projector := budget.NewProjector(store.NewMemory(), weekendExpander())
	result, err := projector.Project(context.Background(), budget.ProjectionRequest{
		Budget: b,
		First:  budget.NewPeriod(2026, time.January),
		Last:   budget.NewPeriod(2026, time.January),
		Now:    date(2026, time.January, 10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pp := result.Periods[0]
	if pp.ExpectedIncome != 0 || pp.ExpectedExpense != 0 {
		t.Errorf("expected zero headline totals, got income %d expenses %d", pp.ExpectedIncome, pp.ExpectedExpense)
	}
	if pp.EndBalance != 0 {
		t.Errorf("expected transfers to not move the total balance, got %d", pp.EndBalance)
	}
	if got := pp.AccountDeltas["acc-main"]; got != -5_000_00 {
		t.Errorf("expected acc-main delta -500000, got %d", got)
	}
	if got := pp.AccountDeltas["acc-savings"]; got != 5_000_00 {
		t.Errorf("expected acc-savings delta 500000, got %d", got)
	}
}

func TestProject_LowestPointPicksMinimumEndBalance(t *testing.T) {
	// GIVEN: Expenses only until income starts in March
	// THEN: The lowest point is February, before the first salary

	b := projectionBudget(
		budget.BudgetLine{
			ID: "l-salary", BudgetID: "b1", Category: "income/salary",
			Direction: budget.DirectionIncome,
			Accounts:  []budget.AccountID{"acc-main"},
			Patterns:  []budget.AmountPattern{monthlyPattern("p-salary", 5_000_00, date(2026, time.March, 1), 1)},
		},
		budget.BudgetLine{
			ID: "l-food", BudgetID: "b1", Category: "household/food",
			Direction: budget.DirectionExpense,
			Accounts:  []budget.AccountID{"acc-main"},
			Patterns:  []budget.AmountPattern{monthlyPattern("p-food", -2_000_00, date(2026, time.January, 1), 1)},
		},
	)

	projector := budget.NewProjector(store.NewMemory(), weekendExpander())
	result, err := projector.Project(context.Background(), budget.ProjectionRequest{
		Budget: b,
		First:  budget.NewPeriod(2026, time.January),
		Last:   budget.NewPeriod(2026, time.April),
		Now:    date(2026, time.January, 10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.LowestPoint == nil {
		t.Fatal("expected a lowest point")
	}
	if result.LowestPoint.Period != budget.NewPeriod(2026, time.February) {
		t.Errorf("expected lowest point in 2026-02, got %s", result.LowestPoint.Period)
	}
	if result.LowestPoint.EndBalance != -4_000_00 {
		t.Errorf("expected lowest balance -400000, got %d", result.LowestPoint.EndBalance)
	}
}

func TestProject_LowestPointTieBreaksEarliest(t *testing.T) {
	// All periods net to zero, so every end balance ties at the opening
	// balance; the earliest period wins.
	b := projectionBudget()

	projector := budget.NewProjector(store.NewMemory(), weekendExpander())
	result, err := projector.Project(context.Background(), budget.ProjectionRequest{
		Budget:         b,
		First:          budget.NewPeriod(2026, time.January),
		Last:           budget.NewPeriod(2026, time.March),
		OpeningBalance: 1_000_00,
		Now:            date(2026, time.January, 10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.LowestPoint == nil {
		t.Fatal("expected a lowest point")
	}
	if result.LowestPoint.Period != budget.NewPeriod(2026, time.January) {
		t.Errorf("expected the earliest tied period 2026-01, got %s", result.LowestPoint.Period)
	}
}

func TestProject_NextLargeExpenseIsStrictlyAfterNow(t *testing.T) {
	// GIVEN: Monthly groceries, one big purchase on "now" itself and one in
	//        June; threshold at twice the median
	// THEN: The June purchase is flagged, the one on "now" is not

	b := projectionBudget(budget.BudgetLine{
		ID: "l-exp", BudgetID: "b1", Category: "household/misc",
		Direction: budget.DirectionExpense,
		Accounts:  []budget.AccountID{"acc-main"},
		Patterns: []budget.AmountPattern{
			monthlyPattern("p-groceries", -100_00, date(2026, time.January, 1), 5),
			{
				ID: "p-on-now", Amount: -1_000_00,
				StartDate:  date(2026, time.January, 10),
				Recurrence: budget.Once{},
			},
			{
				ID: "p-tv", Amount: -1_000_00,
				StartDate:  date(2026, time.June, 15),
				Recurrence: budget.Once{},
			},
		},
	})

	projector := budget.NewProjector(store.NewMemory(), weekendExpander())
	result, err := projector.Project(context.Background(), budget.ProjectionRequest{
		Budget:       b,
		First:        budget.NewPeriod(2026, time.January),
		Last:         budget.NewPeriod(2026, time.December),
		Now:          date(2026, time.January, 10),
		LargeExpense: budget.LargeExpensePolicy{MinimumAmount: 1, MedianMultiple: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.NextLargeExpense == nil {
		t.Fatal("expected a next large expense")
	}
	if !result.NextLargeExpense.Date.Equal(date(2026, time.June, 15)) {
		t.Errorf("expected 2026-06-15, got %s", result.NextLargeExpense.Date)
	}
	if result.NextLargeExpense.Amount != -1_000_00 {
		t.Errorf("expected amount -100000, got %d", result.NextLargeExpense.Amount)
	}
	if result.NextLargeExpense.Category != "household/misc" {
		t.Errorf("expected category household/misc, got %s", result.NextLargeExpense.Category)
	}
}

func TestProject_PeriodAnchoredExpenseDatesAtPeriodStart(t *testing.T) {
	// A period-anchored expense has no date of its own; for the large
	// expense scan it counts at the start of its period.
	b := projectionBudget(budget.BudgetLine{
		ID: "l-exp", BudgetID: "b1", Category: "household/repairs",
		Direction: budget.DirectionExpense,
		Accounts:  []budget.AccountID{"acc-main"},
		Patterns: []budget.AmountPattern{
			monthlyPattern("p-groceries", -100_00, date(2026, time.January, 1), 5),
			{
				ID: "p-roof", Amount: -50_000_00,
				StartDate:  date(2026, time.May, 20),
				Recurrence: budget.PeriodOnce{},
			},
		},
	})

	projector := budget.NewProjector(store.NewMemory(), weekendExpander())
	result, err := projector.Project(context.Background(), budget.ProjectionRequest{
		Budget:       b,
		First:        budget.NewPeriod(2026, time.January),
		Last:         budget.NewPeriod(2026, time.December),
		Now:          date(2026, time.January, 10),
		LargeExpense: budget.LargeExpensePolicy{MinimumAmount: 10_000_00, MedianMultiple: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.NextLargeExpense == nil {
		t.Fatal("expected a next large expense")
	}
	if !result.NextLargeExpense.Date.Equal(date(2026, time.May, 1)) {
		t.Errorf("expected the period start 2026-05-01, got %s", result.NextLargeExpense.Date)
	}
}

func TestProject_ReversedHorizonRejected(t *testing.T) {
	projector := budget.NewProjector(store.NewMemory(), weekendExpander())
	_, err := projector.Project(context.Background(), budget.ProjectionRequest{
		Budget: projectionBudget(),
		First:  budget.NewPeriod(2026, time.June),
		Last:   budget.NewPeriod(2026, time.January),
		Now:    date(2026, time.January, 10),
	})
	if !budget.IsClientError(err) {
		t.Fatalf("expected a client error, got %v", err)
	}
}
