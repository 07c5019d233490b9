package tablestore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ardanlabs/dispatch/foundation/dispatch"
	"github.com/ardanlabs/dispatch/foundation/tablestore"
	"github.com/google/go-cmp/cmp"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestStore(t *testing.T) {
	t.Log("Given the need to keep built tables.")
	{
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store, err := tablestore.New(ctx, tablestore.Config{LifeWindow: time.Minute})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the store: %s", failed, err)
		}
		defer store.Close()

		fns := []dispatch.Function{
			{Signature: "callReinforcements1()", Handler: "CALL_1"},
			{Signature: "callReinforcements2()", Handler: "CALL_2"},
			{Signature: "callReinforcements3()", Handler: "CALL_3"},
		}

		tbl, err := dispatch.BuildWithWidth(fns, 2, dispatch.DefaultConfig())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to build the table: %s", failed, err)
		}

		t.Logf("\tTest 0:\tWhen saving and reading back a table.")
		{
			digest, err := store.Save(tbl)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to save the table: %s", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to save the table.", success)

			got, err := store.Get(digest)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the table: %s", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to read the table.", success)

			if diff := cmp.Diff(tbl, got); diff != "" {
				t.Fatalf("\t%s\tTest 0:\tShould get back the same table:\n%s", failed, diff)
			}
			t.Logf("\t%s\tTest 0:\tShould get back the same table.", success)

			again, err := got.Digest()
			if err != nil || again != digest {
				t.Fatalf("\t%s\tTest 0:\tShould get back the same digest: %s %v", failed, again, err)
			}
			t.Logf("\t%s\tTest 0:\tShould get back the same digest.", success)

			if _, err := store.Save(tbl); err != nil || store.Len() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould store the same table once: %d %v", failed, store.Len(), err)
			}
			t.Logf("\t%s\tTest 0:\tShould store the same table once.", success)
		}

		t.Logf("\tTest 1:\tWhen reading an unknown digest.")
		{
			_, err := store.Get("0x00")
			if !errors.Is(err, tablestore.ErrNotFound) {
				t.Fatalf("\t%s\tTest 1:\tShould get a not found error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get a not found error.", success)
		}
	}
}

func TestLargeTables(t *testing.T) {
	fns := make([]dispatch.Function, 2000)
	for i := range fns {
		fns[i] = dispatch.Function{Signature: fmt.Sprintf("fn%d(uint256)", i)}
	}

	tbl, err := dispatch.Build(fns, dispatch.DefaultConfig())
	if err != nil {
		t.Fatalf("\t%s\tShould be able to build the table: %s", failed, err)
	}

	t.Log("Given the need to keep tables with thousands of functions.")
	{
		t.Logf("\tTest 0:\tWhen saving a 2000 function table with a bounded cache.")
		{
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			store, err := tablestore.New(ctx, tablestore.Config{LifeWindow: time.Hour, MaxEntrySize: 4096, HardMaxCacheSize: 64})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct the store: %s", failed, err)
			}
			defer store.Close()

			digest, err := store.Save(tbl)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to save the table: %s", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to save the table.", success)

			got, err := store.Get(digest)
			if err != nil || len(got.Resolutions) != len(fns) {
				t.Fatalf("\t%s\tTest 0:\tShould read back every function: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould read back every function.", success)
		}

		t.Logf("\tTest 1:\tWhen the table can't fit in a cache shard.")
		{
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			store, err := tablestore.New(ctx, tablestore.Config{LifeWindow: time.Hour, HardMaxCacheSize: 1})
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct the store: %s", failed, err)
			}
			defer store.Close()

			if _, err := store.Save(tbl); !errors.Is(err, tablestore.ErrTooLarge) {
				t.Fatalf("\t%s\tTest 1:\tShould get a too large error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get a too large error.", success)
		}
	}
}
