// Package tools binds the spreadsheet operations as callable tools for the
// conversational agent: a declarative definition list plus a handler that
// executes calls by name.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"gastos/internal/core"
	"gastos/internal/sheets"
)

// Definitions lists the tools exposed to the model. Argument schemas follow
// the date and currency contracts of the handlers below.
func Definitions() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "get_current_date",
				Description: "Get the current date in format YYYY-MM-DD.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "get_wallets",
				Description: "Get the list of valid wallets. Use it to validate or suggest a wallet; never invent wallet names.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "get_refund_to",
				Description: "Get the list of valid names an expense can be refunded to. Use it to validate or suggest a name; never invent names.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "get_categories",
				Description: "Get the list of valid expense categories with their descriptions. Use it to validate or infer a category; never invent categories.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "save_expense_data",
				Description: "Save one expense record. Always ask the user for confirmation before calling this tool.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"description": {"type": "string", "description": "Description of the expense"},
						"amount": {"type": "number", "description": "Amount of the expense"},
						"date": {"type": "string", "description": "Date of the expense in format YYYY-MM-DD"},
						"currency": {"type": "string", "description": "Currency of the expense. Select between USD, PEN."},
						"category": {"type": "string", "description": "Category inferred from the description or given by the user"},
						"wallet": {"type": "string", "description": "Wallet of the expense; must exist in the list from get_wallets"},
						"refund_to": {"type": "string", "description": "Name of the person to refund, or empty string"}
					},
					"required": ["description", "amount", "date", "currency"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "get_summary_between_dates",
				Description: "Get the summary of expenses between two dates, grouped by currency, category, weekday and date.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"start_date": {"type": "string", "description": "Start date of the summary in format YYYY-MM-DD"},
						"end_date": {"type": "string", "description": "End date of the summary in format YYYY-MM-DD"}
					},
					"required": ["start_date", "end_date"]
				}`),
			},
		},
	}
}

// Handler executes tool calls against the spreadsheet ports.
type Handler struct {
	appender sheets.RecordAppender
	wallets  sheets.WalletReader
	cats     sheets.CategoryReader
	refunds  sheets.RefundReader
	scanner  sheets.RowScanner
	now      func() time.Time
}

func NewHandler(appender sheets.RecordAppender, wallets sheets.WalletReader, cats sheets.CategoryReader, refunds sheets.RefundReader, scanner sheets.RowScanner) *Handler {
	return &Handler{
		appender: appender,
		wallets:  wallets,
		cats:     cats,
		refunds:  refunds,
		scanner:  scanner,
		now:      time.Now,
	}
}

// Definitions implements the agent's tool executor contract.
func (h *Handler) Definitions() []openai.Tool {
	return Definitions()
}

// Execute runs a tool call and returns the result as a string. Validation
// failures come back as plain messages with a nil error so the agent relays
// them to the user; returned errors are I/O failures.
func (h *Handler) Execute(ctx context.Context, name, argsJSON string) (string, error) {
	switch name {
	case "get_current_date":
		return h.now().Format(core.ISODateFormat), nil
	case "get_wallets":
		return h.getWallets(ctx)
	case "get_refund_to":
		return h.getRefundTo(ctx)
	case "get_categories":
		return h.getCategories(ctx)
	case "save_expense_data":
		return h.saveExpense(ctx, argsJSON)
	case "get_summary_between_dates":
		return h.getSummary(ctx, argsJSON)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func (h *Handler) getWallets(ctx context.Context) (string, error) {
	wallets, err := h.wallets.Wallets(ctx)
	if err != nil {
		return "", fmt.Errorf("get wallets: %w", err)
	}
	return marshalJSON(wallets)
}

func (h *Handler) getRefundTo(ctx context.Context) (string, error) {
	names, err := h.refunds.RefundTargets(ctx)
	if err != nil {
		return "", fmt.Errorf("get refund targets: %w", err)
	}
	return marshalJSON(names)
}

func (h *Handler) getCategories(ctx context.Context) (string, error) {
	cats, err := h.cats.Categories(ctx)
	if err != nil {
		return "", fmt.Errorf("get categories: %w", err)
	}
	type entry struct {
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	out := make([]entry, 0, len(cats))
	for _, c := range cats {
		out = append(out, entry{Category: c.Name, Description: c.Description})
	}
	return marshalJSON(out)
}

type saveExpenseArgs struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Wallet      string  `json:"wallet"`
	RefundTo    string  `json:"refund_to"`
}

func (h *Handler) saveExpense(ctx context.Context, argsJSON string) (string, error) {
	var args saveExpenseArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	if !core.ValidCurrency(args.Currency) {
		return "Invalid currency. Select between USD, PEN.", nil
	}
	date, err := core.ParseISODate(args.Date)
	if err != nil {
		return "Invalid date format. Please use YYYY-MM-DD.", nil
	}

	rec := core.Record{
		Date:        date,
		Description: strings.ToLower(args.Description),
		Amount:      core.MoneyFromFloat(args.Amount),
		Currency:    args.Currency,
		Category:    strings.ToLower(args.Category),
		Wallet:      args.Wallet,
		RefundTo:    strings.ToLower(args.RefundTo),
	}
	if err := h.appender.Append(ctx, rec); err != nil {
		return "", fmt.Errorf("append record: %w", err)
	}

	return fmt.Sprintf(
		"Expense data saved: description: %s, amount: %s, date: %s, currency: %s, category: %s, wallet: %s, refund_to: %s",
		rec.Description, rec.Amount.Format(), rec.Date.Display(), rec.Currency, rec.Category, rec.Wallet, rec.RefundTo,
	), nil
}

type summaryArgs struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h *Handler) getSummary(ctx context.Context, argsJSON string) (string, error) {
	var args summaryArgs
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	rows, err := h.scanner.Rows(ctx)
	if err != nil {
		return "", fmt.Errorf("read data rows: %w", err)
	}
	return core.Summarize(rows, args.StartDate, args.EndDate), nil
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
