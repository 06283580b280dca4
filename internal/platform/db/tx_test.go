package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
)

// fakeTx satisfies pgx.Tx by embedding; repositories only check for presence.
type fakeTx struct{ pgx.Tx }

func TestTxFromContext_AbsentReturnsNil(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Errorf("expected nil transaction, got %v", tx)
	}
}

func TestContextWithTx_RoundTrip(t *testing.T) {
	want := fakeTx{}
	ctx := ContextWithTx(context.Background(), want)
	got := TxFromContext(ctx)
	if got != want {
		t.Errorf("expected stored transaction back, got %v", got)
	}
}
