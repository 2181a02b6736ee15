package variable

import "strings"

// Paging bounds.
const (
	minPageSize = 1
	maxPageSize = 1000
)

// PageResult is one page of filtered records. Total and TotalPages
// describe the full filtered set, not the slice.
type PageResult struct {
	Items      []Record `json:"items"`
	Total      int      `json:"total"`
	TotalPages int      `json:"total_pages"`
}

// Page filters records by a case-insensitive substring over name and
// path, then slices out the requested page.
//
// The page number is clamped to a minimum of 1 and pageSize to
// [1, 1000]. An out-of-range page yields empty items with Total and
// TotalPages still reflecting the filtered set. TotalPages is 0 when
// nothing matched.
func Page(records []Record, filter string, page, pageSize int) PageResult {
	if page < 1 {
		page = 1
	}
	if pageSize < minPageSize {
		pageSize = minPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filtered := records
	if needle := strings.ToLower(strings.TrimSpace(filter)); needle != "" {
		filtered = make([]Record, 0, len(records))
		for _, rec := range records {
			if strings.Contains(strings.ToLower(rec.Name), needle) ||
				strings.Contains(strings.ToLower(rec.Path), needle) {
				filtered = append(filtered, rec)
			}
		}
	}

	total := len(filtered)
	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]Record, end-start)
	copy(items, filtered[start:end])

	return PageResult{
		Items:      items,
		Total:      total,
		TotalPages: totalPages,
	}
}
