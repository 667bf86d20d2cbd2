package export

import (
	"strings"
	"testing"

	"github.com/san-kum/quarksim/internal/world"
)

func TestSnapshotSVG(t *testing.T) {
	w, err := world.New(world.Options{
		Ups:         4,
		Downs:       2,
		Electrons:   1,
		HadronCap:   4,
		NucleusCap:  2,
		BoxSize:     10,
		QuarkRadius: 0.15,
		Seed:        1,
	})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}

	svg := SnapshotSVG(w, 640, 480)

	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing XML header")
	}
	if !strings.Contains(svg, `width="640"`) || !strings.Contains(svg, `height="480"`) {
		t.Error("missing dimensions")
	}
	if got := strings.Count(svg, "<circle"); got < len(w.Particles) {
		t.Errorf("found %d circles, want at least %d", got, len(w.Particles))
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("unterminated document")
	}
}

func TestSnapshotSVGEmpty(t *testing.T) {
	if SnapshotSVG(nil, 100, 100) != "" {
		t.Error("expected empty output for nil world")
	}
}
