package dot

import (
	"strings"
	"testing"

	"cmm/src/frontend"
)

func TestRenderProducesValidDigraphShape(t *testing.T) {
	root, err := frontend.Parse("int main(void) { return 0; }")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	out := Render(root, "prog")
	if !strings.HasPrefix(out, "digraph prog {\n") || !strings.HasSuffix(out, "}\n") {
		t.Fatalf("unexpected digraph framing: %q", out)
	}
	if strings.Count(out, "node1 [label=") != 1 {
		t.Fatalf("expected node1 to be the Program root, got: %q", out)
	}
}

func TestRenderNodeIDsDoNotCollideAcrossCalls(t *testing.T) {
	root, err := frontend.Parse("int f(void) { return 0; } int g(void) { return 1; }")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	first := Render(root, "a")
	second := Render(root, "b")
	if first == "" || second == "" {
		t.Fatalf("expected non-empty renders")
	}
	// Each independent render restarts its own id counter at 1.
	if !strings.Contains(first, "node1 [label=\"Program\"]") || !strings.Contains(second, "node1 [label=\"Program\"]") {
		t.Fatalf("expected both renders to number their root node1, got:\n%s\n%s", first, second)
	}
}
