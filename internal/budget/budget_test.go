package budget

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s: expected %s, got %s", field, want, got.String())
	}
}

var (
	food = Category{ID: "cat-food", Name: "Food"}
	gas  = Category{ID: "cat-gas", Name: "Gas"}
	rent = Category{ID: "cat-rent", Name: "Rent"}
)

func TestAggregate(t *testing.T) {
	t.Run("sums per category", func(t *testing.T) {
		sums := Aggregate([]Spend{
			{CategoryID: food.ID, Amount: d("12.25")},
			{CategoryID: gas.ID, Amount: d("40.00")},
			{CategoryID: food.ID, Amount: d("7.75")},
		})

		if len(sums) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(sums))
		}
		assertDecimal(t, "food", sums[food.ID], "20.00")
		assertDecimal(t, "gas", sums[gas.ID], "40.00")
	})

	t.Run("rounds half away from zero after summing", func(t *testing.T) {
		sums := Aggregate([]Spend{
			{CategoryID: food.ID, Amount: d("10.00")},
			{CategoryID: food.ID, Amount: d("20.005")},
		})

		if got := sums[food.ID].StringFixed(2); got != "30.01" {
			t.Errorf("expected 30.01, got %s", got)
		}
	})

	t.Run("rounds the sum not each addend", func(t *testing.T) {
		// 0.004 * 3 = 0.012 -> 0.01, whereas rounding each addend would give 0.00.
		sums := Aggregate([]Spend{
			{CategoryID: gas.ID, Amount: d("0.004")},
			{CategoryID: gas.ID, Amount: d("0.004")},
			{CategoryID: gas.ID, Amount: d("0.004")},
		})
		assertDecimal(t, "gas", sums[gas.ID], "0.01")
	})

	t.Run("empty input", func(t *testing.T) {
		if sums := Aggregate(nil); len(sums) != 0 {
			t.Errorf("expected no sums, got %v", sums)
		}
	})
}

func TestReconcile_FoodScenario(t *testing.T) {
	lines := []Line{{ID: "l1", CategoryID: food.ID, BeginningBalance: d("100.00"), BudgetAmount: Configured(d("300.00"))}}
	spent := Aggregate([]Spend{{CategoryID: food.ID, Amount: d("45.50")}})

	res, err := Reconcile(lines, []Category{food}, spent, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := res.Lines()[0]
	if row.Category != "Food" || row.LineID != "l1" {
		t.Errorf("unexpected row identity: %+v", row)
	}
	assertDecimal(t, "expense_amt", row.ExpenseAmount, "45.50")
	assertDecimal(t, "total_available", row.TotalAvailable, "400.00")
	assertDecimal(t, "current_bal", row.CurrentBalance, "354.50")
	assertDecimal(t, "rounded_expense_amt", row.RoundedExpenseAmount, "46")

	point, ok := res.Chart["Food"]
	if !ok {
		t.Fatal("expected chart point for Food")
	}
	assertDecimal(t, "chart budget", point.BudgetAmount, "300.00")
	assertDecimal(t, "chart expense", point.ExpenseAmount, "45.50")
}

func TestReconcile_ZeroFill(t *testing.T) {
	lines := []Line{
		{ID: "l1", CategoryID: gas.ID, BeginningBalance: d("50.00"), BudgetAmount: Configured(d("100.00"))},
		{ID: "l2", CategoryID: food.ID, BeginningBalance: d("0"), BudgetAmount: Configured(d("10.00"))},
	}
	spent := map[string]decimal.Decimal{food.ID: d("3.00")}

	res, err := Reconcile(lines, []Category{food, gas}, spent, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gasRow *Row
	for i := range res.Lines() {
		if res.Rows[i].Category == "Gas" {
			gasRow = &res.Rows[i]
		}
	}
	if gasRow == nil {
		t.Fatal("expected a Gas row")
	}
	assertDecimal(t, "expense_amt", gasRow.ExpenseAmount, "0")
	assertDecimal(t, "current_bal", gasRow.CurrentBalance, "150.00")
	if !gasRow.CurrentBalance.Equal(gasRow.TotalAvailable) {
		t.Error("current balance should equal total available when nothing was spent")
	}
	assertDecimal(t, "rounded", gasRow.RoundedExpenseAmount, "0")
}

func TestReconcile_SortedWithTotalsLast(t *testing.T) {
	lines := []Line{
		{ID: "l-rent", CategoryID: rent.ID, BeginningBalance: d("0"), BudgetAmount: Configured(d("1200.00"))},
		{ID: "l-food", CategoryID: food.ID, BeginningBalance: d("100.00"), BudgetAmount: Configured(d("300.00"))},
		{ID: "l-gas", CategoryID: gas.ID, BeginningBalance: d("50.00"), BudgetAmount: Configured(d("100.00"))},
	}
	spent := map[string]decimal.Decimal{food.ID: d("45.50"), rent.ID: d("1200.00"), gas.ID: d("20.10")}

	res, err := Reconcile(lines, []Category{rent, gas, food}, spent, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Food", "Gas", "Rent", "Totals"}
	if len(res.Rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(res.Rows))
	}
	for i, name := range want {
		if res.Rows[i].Category != name {
			t.Errorf("row %d: expected %s, got %s", i, name, res.Rows[i].Category)
		}
	}

	totals := res.Totals()
	assertDecimal(t, "totals beginning", totals.BeginningBalance, "150.00")
	assertDecimal(t, "totals budget", totals.BudgetAmount, "1600.00")
	assertDecimal(t, "totals available", totals.TotalAvailable, "1750.00")
	assertDecimal(t, "totals expense", totals.ExpenseAmount, "1265.60")
	assertDecimal(t, "totals rounded", totals.RoundedExpenseAmount, "1267")
	assertDecimal(t, "totals current", totals.CurrentBalance, "484.40")
}

func TestReconcile_Invariants(t *testing.T) {
	lines := []Line{
		{ID: "a", CategoryID: food.ID, BeginningBalance: d("12.34"), BudgetAmount: Configured(d("250.00"))},
		{ID: "b", CategoryID: gas.ID, BeginningBalance: d("-20.00"), BudgetAmount: Configured(d("80.50"))},
		{ID: "c", CategoryID: rent.ID, BeginningBalance: d("0.01"), BudgetAmount: Configured(d("0"))},
	}
	spent := Aggregate([]Spend{
		{CategoryID: food.ID, Amount: d("99.99")},
		{CategoryID: food.ID, Amount: d("0.02")},
		{CategoryID: gas.ID, Amount: d("100.00")},
	})

	res, err := Reconcile(lines, []Category{food, gas, rent}, spent, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sum Row
	for _, r := range res.Lines() {
		identity := r.BeginningBalance.Add(r.BudgetAmount).Sub(r.ExpenseAmount).Round(2)
		if !r.CurrentBalance.Equal(identity) {
			t.Errorf("%s: balance identity broken: %s != %s", r.Category, r.CurrentBalance, identity)
		}
		sum.BeginningBalance = sum.BeginningBalance.Add(r.BeginningBalance)
		sum.BudgetAmount = sum.BudgetAmount.Add(r.BudgetAmount)
		sum.TotalAvailable = sum.TotalAvailable.Add(r.TotalAvailable)
		sum.ExpenseAmount = sum.ExpenseAmount.Add(r.ExpenseAmount)
		sum.RoundedExpenseAmount = sum.RoundedExpenseAmount.Add(r.RoundedExpenseAmount)
		sum.CurrentBalance = sum.CurrentBalance.Add(r.CurrentBalance)
	}

	totals := res.Totals()
	pairs := []struct {
		name      string
		got, want decimal.Decimal
	}{
		{"beginning", totals.BeginningBalance, sum.BeginningBalance},
		{"budget", totals.BudgetAmount, sum.BudgetAmount},
		{"available", totals.TotalAvailable, sum.TotalAvailable},
		{"expense", totals.ExpenseAmount, sum.ExpenseAmount},
		{"rounded", totals.RoundedExpenseAmount, sum.RoundedExpenseAmount},
		{"current", totals.CurrentBalance, sum.CurrentBalance},
	}
	for _, p := range pairs {
		if !p.got.Equal(p.want) {
			t.Errorf("totals %s: expected %s, got %s", p.name, p.want, p.got)
		}
	}

	// Gas is overspent: the balance goes negative rather than being clamped.
	for _, r := range res.Lines() {
		if r.Category == "Gas" {
			assertDecimal(t, "gas current", r.CurrentBalance, "-39.50")
		}
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	lines := []Line{{ID: "l1", CategoryID: food.ID, BeginningBalance: d("100.00"), BudgetAmount: Configured(d("300.00"))}}
	spent := map[string]decimal.Decimal{food.ID: d("45.50")}

	first, err := Reconcile(lines, []Category{food}, spent, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Reconcile(lines, []Category{food}, spent, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range first.Rows {
		a, b := first.Rows[i], second.Rows[i]
		if a.Category != b.Category || !a.CurrentBalance.Equal(b.CurrentBalance) ||
			!a.ExpenseAmount.Equal(b.ExpenseAmount) || !a.TotalAvailable.Equal(b.TotalAvailable) {
			t.Errorf("row %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
}

func TestReconcile_Unconfigured(t *testing.T) {
	lines := []Line{
		{ID: "l1", CategoryID: food.ID, BeginningBalance: d("100.00"), BudgetAmount: Configured(d("300.00"))},
		{ID: "l2", CategoryID: rent.ID, BeginningBalance: d("10.00"), BudgetAmount: Unconfigured()},
		{ID: "l3", CategoryID: gas.ID, BeginningBalance: d("10.00"), BudgetAmount: AmountFromNull(decimal.NullDecimal{})},
	}

	res, err := Reconcile(lines, []Category{food, gas, rent}, nil, DefaultOptions())
	if res != nil {
		t.Error("expected no result on configuration error")
	}

	var cfgErr *UnconfiguredError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *UnconfiguredError, got %T: %v", err, err)
	}
	if len(cfgErr.Categories) != 2 || cfgErr.Categories[0] != "Gas" || cfgErr.Categories[1] != "Rent" {
		t.Errorf("expected [Gas Rent], got %v", cfgErr.Categories)
	}
	if cfgErr.Error() != "budget amount not configured for: Gas, Rent" {
		t.Errorf("unexpected message %q", cfgErr.Error())
	}
}

func TestReconcile_ZeroBudgetIsConfigured(t *testing.T) {
	lines := []Line{{ID: "l1", CategoryID: food.ID, BeginningBalance: d("5.00"), BudgetAmount: Configured(decimal.Zero)}}

	res, err := Reconcile(lines, []Category{food}, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("a zero budget is a valid configuration: %v", err)
	}
	assertDecimal(t, "current", res.Lines()[0].CurrentBalance, "5.00")
}

func TestReconcile_Warnings(t *testing.T) {
	lines := []Line{
		{ID: "l1", CategoryID: food.ID, BeginningBalance: d("0"), BudgetAmount: Configured(d("10.00"))},
		{ID: "ghost", CategoryID: "cat-deleted", BeginningBalance: d("0"), BudgetAmount: Configured(d("10.00"))},
	}
	spent := map[string]decimal.Decimal{gas.ID: d("12.00")}

	res, err := Reconcile(lines, []Category{food, gas}, spent, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Lines()) != 1 || res.Rows[0].Category != "Food" {
		t.Errorf("orphaned line must not produce a row, got %+v", res.Rows)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %+v", len(res.Warnings), res.Warnings)
	}

	kinds := map[WarningKind]Warning{}
	for _, w := range res.Warnings {
		kinds[w.Kind] = w
	}
	if w, ok := kinds[WarningOrphanedLine]; !ok || w.CategoryID != "cat-deleted" {
		t.Errorf("expected orphaned line warning, got %+v", w)
	}
	w, ok := kinds[WarningUnbudgetedCategory]
	if !ok || w.Category != "Gas" {
		t.Fatalf("expected unbudgeted Gas warning, got %+v", w)
	}
	assertDecimal(t, "unbudgeted spent", w.Spent, "12.00")
}

func TestReconcile_DisplayPlacesIgnored(t *testing.T) {
	lines := []Line{{ID: "l1", CategoryID: food.ID, BeginningBalance: d("100.00"), BudgetAmount: Configured(d("300.00"))}}
	spent := Aggregate([]Spend{{CategoryID: food.ID, Amount: d("20.25")}, {CategoryID: food.ID, Amount: d("25.25")}})

	for _, places := range []int32{0, 4} {
		res, err := Reconcile(lines, []Category{food}, spent, Options{Places: places, TotalsLabel: "Totals"})
		if err != nil {
			t.Fatalf("places %d: unexpected error: %v", places, err)
		}
		row := res.Lines()[0]
		assertDecimal(t, "expense", row.ExpenseAmount, "45.50")
		assertDecimal(t, "total", row.TotalAvailable, "400.00")
		assertDecimal(t, "current", row.CurrentBalance, "354.50")
		if row.CurrentBalance.Exponent() < -MoneyPlaces {
			t.Errorf("places %d: current balance %s has more than cents", places, row.CurrentBalance)
		}
	}
}

func TestReconcile_AllLinesOrphaned(t *testing.T) {
	lines := []Line{{ID: "ghost", CategoryID: "cat-deleted", BeginningBalance: d("0"), BudgetAmount: Configured(d("10.00"))}}

	res, err := Reconcile(lines, []Category{food}, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Lines()) != 0 {
		t.Errorf("expected no reconciled rows, got %+v", res.Lines())
	}
	if len(res.Warnings) != 2 {
		t.Errorf("expected two warnings, got %+v", res.Warnings)
	}
}

func TestReconcile_CustomTotalsLabel(t *testing.T) {
	lines := []Line{{ID: "l1", CategoryID: food.ID, BeginningBalance: d("1.00"), BudgetAmount: Configured(d("2.00"))}}
	opts := Options{Places: 2, TotalsLabel: "Summe"}

	res, err := Reconcile(lines, []Category{food}, nil, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Totals().Category != "Summe" {
		t.Errorf("expected custom label, got %q", res.Totals().Category)
	}
}

func TestMonthWindow(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	start, end := MonthWindow(time.Date(2026, time.October, 31, 22, 0, 0, 0, loc))

	if !start.Equal(time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %s", start)
	}
	if !end.Equal(time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end %s", end)
	}

	start, end = MonthWindow(time.Date(2026, time.December, 15, 0, 0, 0, 0, time.UTC))
	if start.Month() != time.December || end.Year() != 2027 || end.Month() != time.January {
		t.Errorf("unexpected december window %s - %s", start, end)
	}
}

func TestEmpty(t *testing.T) {
	r := Empty(2026, time.October, StatusNoExpenses)
	if r.Message != MessageNoExpenses || len(r.Rows) != 0 {
		t.Errorf("unexpected report %+v", r)
	}
	r = Empty(2026, time.October, StatusNoBudgetLines)
	if r.Message != MessageNoBudgetLines {
		t.Errorf("unexpected message %q", r.Message)
	}
}
