package request

import "testing"

func TestPaginatedRequestClampsConsistently(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name       string
		req        PaginatedRequest
		wantLimit  int
		wantOffset int
		wantPage   int
	}{
		{name: "defaults", req: PaginatedRequest{}, wantLimit: DefaultPerPage, wantOffset: 0, wantPage: 1},
		{name: "third page", req: PaginatedRequest{Page: 3, PerPage: 20}, wantLimit: 20, wantOffset: 40, wantPage: 3},
		{name: "oversized page", req: PaginatedRequest{Page: 2, PerPage: 500}, wantLimit: MaxPerPage, wantOffset: MaxPerPage, wantPage: 2},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.req.Limit(); got != tc.wantLimit {
				t.Fatalf("expected limit %d, got %d", tc.wantLimit, got)
			}
			if got := tc.req.Offset(); got != tc.wantOffset {
				t.Fatalf("expected offset %d, got %d", tc.wantOffset, got)
			}
			if got := tc.req.CurrentPage(); got != tc.wantPage {
				t.Fatalf("expected page %d, got %d", tc.wantPage, got)
			}
		})
	}
}
