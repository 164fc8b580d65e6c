package repository

import "testing"

func TestNewPageDefaults(t *testing.T) {
	p := NewPage(0, 0)
	if p.Page != 1 || p.PageSize != 10 {
		t.Fatalf("defaults: got %+v", p)
	}
	if p := NewPage(3, 500); p.PageSize != MaxPageSize || p.Offset() != 2*MaxPageSize {
		t.Fatalf("cap: got %+v offset=%d", p, p.Offset())
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 5, 5},
		{26, 5, 6},
		{7, 1, 7},
	}
	for _, c := range cases {
		if got := TotalPages(c.total, c.size); got != c.want {
			t.Fatalf("TotalPages(%d,%d)=%d want %d", c.total, c.size, got, c.want)
		}
	}
}

func TestPageMeta(t *testing.T) {
	m := NewPage(2, 4).Meta(9)
	if m.Page != 2 || m.PageSize != 4 || m.Total != 9 || m.TotalPages != 3 {
		t.Fatalf("unexpected meta %+v", m)
	}
}
