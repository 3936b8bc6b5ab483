package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"gastos/internal/core"
	"gastos/internal/sheets/memory"
)

func newTestHandler(store *memory.Store) *Handler {
	h := NewHandler(store, store, store, store, store)
	h.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }
	return h
}

func TestExecuteCurrentDate(t *testing.T) {
	h := newTestHandler(memory.New(nil, nil, nil))
	out, err := h.Execute(context.Background(), "get_current_date", "")
	if err != nil || out != "2024-03-05" {
		t.Fatalf("out=%q err=%v", out, err)
	}
}

func TestExecuteReferenceReaders(t *testing.T) {
	store := memory.New(
		[]string{"cash", "bcp"},
		[]core.Category{{Name: "food", Description: "meals and snacks"}},
		[]string{"ana"},
	)
	h := newTestHandler(store)
	ctx := context.Background()

	out, err := h.Execute(ctx, "get_wallets", "")
	if err != nil || out != `["cash","bcp"]` {
		t.Fatalf("wallets out=%q err=%v", out, err)
	}
	out, err = h.Execute(ctx, "get_refund_to", "")
	if err != nil || out != `["ana"]` {
		t.Fatalf("refunds out=%q err=%v", out, err)
	}
	out, err = h.Execute(ctx, "get_categories", "")
	if err != nil || out != `[{"category":"food","description":"meals and snacks"}]` {
		t.Fatalf("categories out=%q err=%v", out, err)
	}
}

func TestSaveExpenseRejectsCurrencyWithoutAppending(t *testing.T) {
	store := memory.New(nil, nil, nil)
	h := newTestHandler(store)

	args := `{"description":"Lunch","amount":10,"date":"2024-03-05","currency":"EUR"}`
	out, err := h.Execute(context.Background(), "save_expense_data", args)
	if err != nil {
		t.Fatalf("validation must not be an error: %v", err)
	}
	if out != "Invalid currency. Select between USD, PEN." {
		t.Fatalf("got %q", out)
	}
	if store.AppendCount() != 0 {
		t.Fatalf("append must not be called for invalid currency")
	}
}

func TestSaveExpenseRejectsBadDate(t *testing.T) {
	store := memory.New(nil, nil, nil)
	h := newTestHandler(store)

	args := `{"description":"Lunch","amount":10,"date":"05/03/2024","currency":"USD"}`
	out, err := h.Execute(context.Background(), "save_expense_data", args)
	if err != nil {
		t.Fatalf("validation must not be an error: %v", err)
	}
	if out != "Invalid date format. Please use YYYY-MM-DD." {
		t.Fatalf("got %q", out)
	}
	if store.AppendCount() != 0 {
		t.Fatalf("append must not be called for bad date")
	}
}

func TestSaveExpenseNormalizesAndConfirms(t *testing.T) {
	store := memory.New(nil, nil, nil)
	h := newTestHandler(store)

	args := `{"description":"LUNCH at Rustica","amount":10.5,"date":"2024-03-05","currency":"PEN","category":"Food","wallet":"cash","refund_to":"Ana"}`
	out, err := h.Execute(context.Background(), "save_expense_data", args)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	for _, want := range []string{
		"Expense data saved:",
		"description: lunch at rustica",
		"amount: 10.50",
		"date: 05/03/2024",
		"currency: PEN",
		"category: food",
		"wallet: cash",
		"refund_to: ana",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}

	rows, _ := store.Rows(context.Background())
	if len(rows) != 1 || rows[0][0] != "05/03/2024" || rows[0][1] != "lunch at rustica" {
		t.Fatalf("unexpected stored row: %v", rows)
	}
}

func TestSaveThenSummaryRoundTrip(t *testing.T) {
	store := memory.New(nil, nil, nil)
	h := newTestHandler(store)
	ctx := context.Background()

	args := `{"description":"lunch","amount":10,"date":"2024-03-05","currency":"USD","category":"food"}`
	if _, err := h.Execute(ctx, "save_expense_data", args); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := h.Execute(ctx, "get_summary_between_dates", `{"start_date":"2024-03-01","end_date":"2024-03-31"}`)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "--- Moneda: USD ---") || !strings.Contains(out, "Gasto Total: 10.00") {
		t.Fatalf("saved expense missing from summary:\n%s", out)
	}

	out, err = h.Execute(ctx, "get_summary_between_dates", `{"start_date":"2024-04-01","end_date":"2024-04-30"}`)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if out != "No expenses found between 2024-04-01 and 2024-04-30." {
		t.Fatalf("expense leaked outside its range: %q", out)
	}
}

func TestSummarySkipsSeededShortRow(t *testing.T) {
	store := memory.New(nil, nil, nil)
	store.SeedRow([]string{"01/03/2024", "short", "10"})
	store.SeedRow([]string{"02/03/2024", "ok", "5", "USD", "food", "cash", ""})
	h := newTestHandler(store)

	out, err := h.Execute(context.Background(), "get_summary_between_dates", `{"start_date":"2024-03-01","end_date":"2024-03-31"}`)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "Gasto Total: 5.00") {
		t.Fatalf("short row should be skipped:\n%s", out)
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	h := newTestHandler(memory.New(nil, nil, nil))
	if _, err := h.Execute(context.Background(), "drop_tables", ""); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
}

func TestDefinitionsCoverAllTools(t *testing.T) {
	defs := Definitions()
	if len(defs) != 6 {
		t.Fatalf("expected 6 tools, got %d", len(defs))
	}
	want := map[string]bool{
		"get_current_date": false, "get_wallets": false, "get_refund_to": false,
		"get_categories": false, "save_expense_data": false, "get_summary_between_dates": false,
	}
	for _, d := range defs {
		if _, ok := want[d.Function.Name]; !ok {
			t.Fatalf("unexpected tool %q", d.Function.Name)
		}
		want[d.Function.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("missing tool %q", name)
		}
	}
}
