package merge

import (
	"sort"
	"strings"

	"github.com/tsawler/layoutseq/model"
)

// groupAdjacent fuses transitively adjacent segments on the same page. Each
// group becomes one segment: the first member (by y1, then x1) provides the
// metadata, the bbox is the group envelope and the contents are joined with a
// space. Segments without geometry or of an isolated content type stay alone.
func (m *Merger) groupAdjacent(segments []model.Segment) []model.Segment {
	sorted := model.CloneSegments(segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.BBox.Y1 != b.BBox.Y1 {
			return a.BBox.Y1 < b.BBox.Y1
		}
		return a.BBox.X1 < b.BBox.X1
	})

	uf := newUnionFind(len(sorted))
	for i := range sorted {
		if !m.groupable(sorted[i]) {
			continue
		}
		for j := i + 1; j < len(sorted) && sorted[j].Page == sorted[i].Page; j++ {
			if !m.groupable(sorted[j]) {
				continue
			}
			if model.IsAdjacent(sorted[i].BBox, sorted[j].BBox, m.config.Merge.VerticalGap, m.config.Merge.HorizontalGap) {
				uf.union(i, j)
			}
		}
	}

	// Groups are emitted in order of their first member
	members := make(map[int][]int)
	var roots []int
	for i := range sorted {
		r := uf.find(i)
		if _, ok := members[r]; !ok {
			roots = append(roots, r)
		}
		members[r] = append(members[r], i)
	}

	out := make([]model.Segment, 0, len(roots))
	for _, r := range roots {
		idx := members[r]
		if len(idx) == 1 {
			out = append(out, sorted[idx[0]])
			continue
		}
		merged := sorted[idx[0]]
		boxes := make([]model.BBox, len(idx))
		parts := make([]string, len(idx))
		for k, i := range idx {
			boxes[k] = sorted[i].BBox
			parts[k] = sorted[i].Content
		}
		merged.BBox, _ = model.Envelope(boxes...)
		merged.Content = strings.Join(parts, " ")
		out = append(out, merged)
	}
	return out
}

func (m *Merger) groupable(seg model.Segment) bool {
	if !seg.HasBBox() {
		return false
	}
	for _, ct := range m.config.Merge.IsolateContentTypes {
		if ct == seg.ContentType {
			return false
		}
	}
	return true
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

// union keeps the smaller index as root so roots follow sort order
func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}
