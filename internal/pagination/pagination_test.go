package pagination

import "testing"

func TestPageRequest_Defaults(t *testing.T) {
	tests := []struct {
		name         string
		in           PageRequest
		wantPage     int
		wantPageSize int
		wantOffset   int
	}{
		{name: "empty", in: PageRequest{}, wantPage: 1, wantPageSize: DefaultPageSize, wantOffset: 0},
		{name: "third_page", in: PageRequest{Page: 3, PageSize: 10}, wantPage: 3, wantPageSize: 10, wantOffset: 20},
		{name: "oversized", in: PageRequest{Page: 1, PageSize: 500}, wantPage: 1, wantPageSize: MaxPageSize, wantOffset: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.in
			req.Defaults()
			if req.Page != tt.wantPage || req.PageSize != tt.wantPageSize {
				t.Errorf("got page=%d size=%d, want page=%d size=%d", req.Page, req.PageSize, tt.wantPage, tt.wantPageSize)
			}
			if req.Offset() != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, req.Offset())
			}
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[int](nil, PageRequest{Page: 1, PageSize: 20}, 41)
	if resp.Data == nil || len(resp.Data) != 0 {
		t.Errorf("expected empty non-nil data, got %v", resp.Data)
	}
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}
}
