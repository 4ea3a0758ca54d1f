package postgres

import (
	"errors"
	"testing"

	"github.com/JuanCGomezS/polla-club/internal/platform/logging"
)

func TestSubscribe_AfterCloseReturnsError(t *testing.T) {
	store := NewStore(nil, "postgres://localhost/unused", logging.NewNop())
	store.Close()

	sub, err := store.Subscribe(t.Context(), "matches", nil)
	if !errors.Is(err, ErrStoreClosed) {
		t.Fatalf("Subscribe after Close: err = %v, want ErrStoreClosed", err)
	}
	if sub != nil {
		t.Fatalf("Subscribe after Close returned a live subscription")
	}
}
