package combine

import (
	"math"
	"testing"

	"github.com/rushteam/shoprec/core"
)

func TestMergeBoostsCollaborative(t *testing.T) {
	c := &Combiner{}
	collab := []*core.RecommendedProduct{
		core.NewRecommendedProduct("p1", 4, core.ReasonFrequentlyBoughtTogether),
	}

	out := c.Merge(collab, nil)
	if len(out) != 1 {
		t.Fatalf("got %d items, want 1", len(out))
	}
	if want := 4 * 1.5; math.Abs(out[0].Score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", out[0].Score, want)
	}
	if out[0].Reason != core.ReasonFrequentlyBoughtTogether {
		t.Errorf("single-source reason must be preserved, got %q", out[0].Reason)
	}
}

func TestMergeOverlapSumsAndRelabels(t *testing.T) {
	c := &Combiner{}
	collab := []*core.RecommendedProduct{
		core.NewRecommendedProduct("p1", 4, core.ReasonSimilarTaste),
	}
	content := []*core.RecommendedProduct{
		core.NewRecommendedProduct("p1", 6, core.ReasonLiked),
		core.NewRecommendedProduct("p2", 10, core.ReasonWishlisted),
	}

	out := c.Merge(collab, content)
	if len(out) != 2 {
		t.Fatalf("got %d items, want 2", len(out))
	}

	byID := make(map[string]*core.RecommendedProduct, len(out))
	for _, rp := range out {
		byID[rp.ProductID] = rp
	}
	// p1 = 4*1.5 + 6
	if want := 12.0; math.Abs(byID["p1"].Score-want) > 1e-9 {
		t.Errorf("p1 score = %v, want %v", byID["p1"].Score, want)
	}
	if byID["p1"].Reason != core.ReasonHighlyRecommended {
		t.Errorf("overlap reason = %q, want %q", byID["p1"].Reason, core.ReasonHighlyRecommended)
	}
	if byID["p2"].Reason != core.ReasonWishlisted {
		t.Errorf("p2 reason = %q, want %q", byID["p2"].Reason, core.ReasonWishlisted)
	}
	// 降序排序：12 > 10
	if out[0].ProductID != "p1" || out[1].ProductID != "p2" {
		t.Errorf("order = [%s, %s], want [p1, p2]", out[0].ProductID, out[1].ProductID)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	c := &Combiner{}
	collab := []*core.RecommendedProduct{
		core.NewRecommendedProduct("p1", 4, core.ReasonSimilarTaste),
	}
	content := []*core.RecommendedProduct{
		core.NewRecommendedProduct("p1", 6, core.ReasonLiked),
	}

	c.Merge(collab, content)
	if collab[0].Score != 4 || collab[0].Reason != core.ReasonSimilarTaste {
		t.Errorf("collaborative input mutated: %+v", collab[0])
	}
	if content[0].Score != 6 || content[0].Reason != core.ReasonLiked {
		t.Errorf("content input mutated: %+v", content[0])
	}
}

func TestMergeStableOnTies(t *testing.T) {
	c := &Combiner{CollaborativeBoost: 1}
	collab := []*core.RecommendedProduct{
		core.NewRecommendedProduct("p_a", 5, core.ReasonSimilarTaste),
		core.NewRecommendedProduct("p_b", 5, core.ReasonSimilarTaste),
	}
	content := []*core.RecommendedProduct{
		core.NewRecommendedProduct("p_c", 5, core.ReasonLiked),
	}

	out := c.Merge(collab, content)
	want := []string{"p_a", "p_b", "p_c"}
	for i, rp := range out {
		if rp.ProductID != want[i] {
			t.Fatalf("tie order = %v at %d, want %v", rp.ProductID, i, want)
		}
	}
}
