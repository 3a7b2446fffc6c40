package debug

import (
	"strings"
	"testing"

	"github.com/rustcycles/rustcycles-sub000/internal/mathx"
)

func TestDrainMovesQueue(t *testing.T) {
	c := NewContext("sv")
	c.Textf("projectiles: %d", 3)
	c.Cross(mathx.V(1, 2, 3), 0, Red)
	c.Arrow(mathx.V(0, 3, 0), mathx.Forward, 0.5, Green)

	texts, shapes := c.Drain()
	if len(texts) != 1 || len(shapes) != 2 {
		t.Fatalf("drained %d texts, %d shapes", len(texts), len(shapes))
	}
	if !strings.HasPrefix(texts[0], "sv ") {
		t.Fatalf("text missing role prefix: %q", texts[0])
	}

	// A second drain must yield nothing: the queue was moved, not copied.
	texts, shapes = c.Drain()
	if len(texts) != 0 || len(shapes) != 0 {
		t.Fatalf("second drain not empty: %d texts, %d shapes", len(texts), len(shapes))
	}
}

func TestMergeAndPruneLifetimes(t *testing.T) {
	c := NewContext("cl")
	c.Textf("local")
	c.Merge([]string{"sv remote"}, []Shape{
		{Kind: KindCross, Time: 0},    // this frame only
		{Kind: KindLine, Time: 0.05},  // survives ~3 frames at 60fps
	})
	if len(c.Texts()) != 2 || len(c.Shapes()) != 2 {
		t.Fatalf("after merge: %d texts, %d shapes", len(c.Texts()), len(c.Shapes()))
	}

	c.Prune(1.0 / 60.0)
	if len(c.Texts()) != 0 {
		t.Fatalf("texts should live one frame, got %d", len(c.Texts()))
	}
	if len(c.Shapes()) != 1 || c.Shapes()[0].Kind != KindLine {
		t.Fatalf("expected only the timed line to survive, got %v", c.Shapes())
	}

	c.Prune(1.0 / 60.0)
	c.Prune(1.0 / 60.0)
	c.Prune(1.0 / 60.0)
	if len(c.Shapes()) != 0 {
		t.Fatalf("expected all shapes expired, got %d", len(c.Shapes()))
	}
}
