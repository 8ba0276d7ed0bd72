package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"facility-booking-backend/models"
)

func TestCreate_ConcurrentCreatesGetDistinctSequenceNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	facilities := []models.Facility{f.sahaCage, f.sahaRoom, f.yeonsanCage}

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[int]uint{}
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fac := facilities[i%len(facilities)]
			b, err := f.bookings.Create(ctx, f.rental(fac, at(2024, 6, 1+i/len(facilities), 10, 0), time.Hour))
			if err != nil {
				t.Errorf("Create %d: %v", i, err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if other, dup := seen[b.SequenceNo]; dup {
				t.Errorf("bookings %d and %d share sequenceNo %d", other, b.ID, b.SequenceNo)
			}
			seen[b.SequenceNo] = b.ID
		}(i)
	}
	wg.Wait()

	if len(seen) != 9 {
		t.Fatalf("distinct sequence numbers = %d, want 9", len(seen))
	}
	for n := 1; n <= 9; n++ {
		if _, ok := seen[n]; !ok {
			t.Fatalf("sequence numbers = %v, missing %d", seen, n)
		}
	}
}

func TestReorder_ResetsCounterAfterDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []uint
	for day := 1; day <= 3; day++ {
		b, err := f.bookings.Create(ctx, f.rental(f.sahaCage, at(2024, 6, day, 10, 0), time.Hour))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, b.ID)
	}
	if err := f.bookings.Delete(ctx, ids[2]); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// Numbers are never reused without a reorder.
	b, err := f.bookings.Create(ctx, f.rental(f.sahaCage, at(2024, 6, 9, 10, 0), time.Hour))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.SequenceNo != 4 {
		t.Fatalf("sequenceNo = %d, want 4", b.SequenceNo)
	}

	if _, err := f.reorder.Reorder(ctx); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	b, err = f.bookings.Create(ctx, f.rental(f.sahaCage, at(2024, 6, 10, 10, 0), time.Hour))
	if err != nil {
		t.Fatalf("Create after reorder: %v", err)
	}
	if b.SequenceNo != 4 {
		t.Fatalf("sequenceNo after reorder = %d, want 4", b.SequenceNo)
	}
}
