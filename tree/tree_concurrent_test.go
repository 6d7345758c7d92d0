package tree

import (
	"fmt"
	"math/rand"
	"syscall"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hanwen/go-treefs/internal/testutil"
)

// TestConcurrentWorkload drives a mix of List/Create/Remove/Move from
// many goroutines against a shared four-level tree and checks that no
// operation ever returns an error outside the taxonomy in spec.md §7
// (scenario 6). It isn't a proof of linearizability, but it is the
// kind of adversarial soak the teacher itself runs in
// fuse/test/node_parallel_lookup_test.go with the same errgroup tool.
func TestConcurrentWorkload(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping soak test in -short mode")
	}

	tr := New()
	defer tr.Close()

	require := func(err error) {
		if err == nil {
			return
		}
		switch err {
		case ErrInvalidPath, ErrNotFound, ErrExists, ErrNotEmpty, ErrBusy, ErrMoveIntoOwnSubtree:
			return
		default:
			t.Fatalf("operation returned an error outside the taxonomy: %v", err)
		}
	}

	const (
		workers  = 64
		duration = 300 * time.Millisecond
		levels   = 4
		fanout   = 3
	)

	deadline := time.Now().Add(duration)

	var wg errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		wg.Go(func() error {
			rnd := rand.New(rand.NewSource(int64(w) + 1))
			for time.Now().Before(deadline) {
				path := randomPath(rnd, levels, fanout)
				switch rnd.Intn(4) {
				case 0:
					_, err := tr.List(path)
					require(err)
				case 1:
					require(tr.Create(path))
				case 2:
					require(tr.Remove(path))
				case 3:
					target := randomPath(rnd, levels, fanout)
					require(tr.Move(path, target))
				}
			}
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		t.Fatal(err)
	}

	if testutil.Verbose() {
		out, err := tr.List("/")
		if err == nil {
			fmt.Printf("final root listing: %q\n", out)
		}
	}
}

// randomPath builds a path of up to `levels` segments drawn from a
// small alphabet of `fanout` names per level, so concurrent workers
// collide on the same folders often enough to exercise contention.
func randomPath(rnd *rand.Rand, levels, fanout int) string {
	depth := rnd.Intn(levels) + 1
	path := "/"
	for i := 0; i < depth; i++ {
		path += fmt.Sprintf("n%d/", rnd.Intn(fanout))
	}
	return path
}

// TestConcurrentCreateRemoveNoDeadlock is a narrower, faster regression
// for the create/remove race spec.md §4.3 calls out explicitly: a
// writer already admitted toward a grandchild must block a sibling
// Remove rather than race it.
func TestConcurrentCreateRemoveNoDeadlock(t *testing.T) {
	tr := New()
	defer tr.Close()
	require_ := func(err error, allowed ...error) {
		if err == nil {
			return
		}
		for _, a := range allowed {
			if err == a {
				return
			}
		}
		t.Fatalf("unexpected error: %v", err)
	}

	require_(tr.Create("/a/"))

	var wg errgroup.Group
	for i := 0; i < 32; i++ {
		wg.Go(func() error {
			require_(tr.Create("/a/b/"), ErrExists, ErrNotFound)
			require_(tr.Remove("/a/b/"), ErrNotFound, ErrNotEmpty)
			return nil
		})
	}
	wg.Go(func() error {
		require_(tr.Remove("/a/"), ErrNotEmpty, syscall.ENOENT)
		return nil
	})

	if err := wg.Wait(); err != nil {
		t.Fatal(err)
	}
}
