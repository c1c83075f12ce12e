package approvalmock

import (
	"context"
	"errors"
	"testing"

	domain "procurement-approval/internal/domain/approval"

	"gorm.io/gorm"
)

func TestRepo_Save(t *testing.T) {
	ctx := context.Background()
	d := &domain.Detail{ID: 1, RequestID: 10}

	called := false
	wantErr := errors.New("boom")
	m := &Repo{
		SaveFn: func(gotCtx context.Context, got *domain.Detail) error {
			called = true
			if gotCtx != ctx {
				t.Fatalf("ctx mismatch")
			}
			if got != d {
				t.Fatalf("arg mismatch")
			}
			return wantErr
		},
	}
	if err := m.Save(ctx, d); !errors.Is(err, wantErr) {
		t.Fatalf("Save: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("SaveFn not called")
	}

	// Default (nil func) → no-op, nil error
	m = &Repo{}
	if err := m.Save(ctx, d); err != nil {
		t.Fatalf("Save default: want nil, got %v", err)
	}
}

func TestRepo_ListByRequestForUpdate(t *testing.T) {
	ctx := context.Background()
	want := []*domain.Detail{{ID: 1, StepOrder: 1}, {ID: 2, StepOrder: 2}}

	m := &Repo{
		ListByRequestForUpdateFn: func(_ context.Context, requestID uint64) ([]*domain.Detail, error) {
			if requestID != 42 {
				t.Fatalf("requestID mismatch: got %d", requestID)
			}
			return want, nil
		},
	}
	got, err := m.ListByRequestForUpdate(ctx, 42)
	if err != nil || len(got) != 2 || got[1] != want[1] {
		t.Fatalf("ListByRequestForUpdate = %v, %v", got, err)
	}

	m = &Repo{}
	got, err = m.ListByRequestForUpdate(ctx, 42)
	if err != nil || got != nil {
		t.Fatalf("default: want nil, nil; got %v, %v", got, err)
	}
}

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}

	if _, err := m.GetForUpdate(ctx, 1); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetForUpdate default: want ErrRecordNotFound, got %v", err)
	}
	if err := m.CreateBatch(ctx, nil); err != nil {
		t.Fatalf("CreateBatch default: %v", err)
	}
	if rows, err := m.ListPending(ctx); rows != nil || err != nil {
		t.Fatalf("ListPending default: %v, %v", rows, err)
	}
	if rows, err := m.ListActedBy(ctx, 1); rows != nil || err != nil {
		t.Fatalf("ListActedBy default: %v, %v", rows, err)
	}
}
