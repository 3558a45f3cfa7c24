package testutil

import (
	"context"
	"os"

	"github.com/andrebq/corkboard/board"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireBoard opens a fresh board database under a temporary directory
// and returns it along with its cleanup function.
func AcquireBoard(ctx context.Context, t TestLog) (*board.Store, func()) {
	dir, err := os.MkdirTemp("", "corkboard-tests")
	if err != nil {
		t.Fatal(err)
	}
	store, err := board.Open(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	return store, func() {
		err := store.Close()
		if err != nil {
			t.Log("unable to close board", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}
