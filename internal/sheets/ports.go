package sheets

import (
	"context"

	"gastos/internal/core"
)

// Ports for the spreadsheet backend. Each reader re-fetches on every call;
// there is no caching and no consistency guarantee across calls.
type (
	RecordAppender interface {
		Append(ctx context.Context, r core.Record) error
	}

	WalletReader interface {
		Wallets(ctx context.Context) ([]string, error)
	}

	CategoryReader interface {
		Categories(ctx context.Context) ([]core.Category, error)
	}

	RefundReader interface {
		RefundTargets(ctx context.Context) ([]string, error)
	}

	// RowScanner returns the raw data-sheet rows (header removed) for the
	// summary aggregator.
	RowScanner interface {
		Rows(ctx context.Context) ([][]string, error)
	}
)
