package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// TotalPages computes how many result pages a search spans. The registry
// renders a fixed-size batch per page (10 by default).
func TotalPages(totalRecords, pageSize int) int {
	if totalRecords <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalRecords + pageSize - 1) / pageSize
}

// ParseTotalRecords reads the leading number out of the results count label,
// e.g. "23 resultados encontrados". A non-numeric label fails the search
// instead of silently walking a single page.
func ParseTotalRecords(label string) (int, error) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, fmt.Errorf("results count label is empty")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("results count label %q is not numeric", strings.TrimSpace(label))
	}
	if n < 0 {
		return 0, fmt.Errorf("results count label %q is negative", strings.TrimSpace(label))
	}
	return n, nil
}
