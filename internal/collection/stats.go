package collection

// Stats holds category counts over a collection.
type Stats struct {
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

// Count returns the count for a category (0 if unknown).
func (s Stats) Count(category string) int {
	return s.Counts[category]
}

// Sum returns the sum of all category counts. It equals Total whenever
// the schema's categories partition the collection.
func (s Stats) Sum() int {
	sum := 0
	for _, n := range s.Counts {
		sum += n
	}
	return sum
}

// Aggregate counts records per category in a single pass. Every named
// category is present in the result, zero when empty.
func Aggregate[R any](schema *Schema[R], records []R) Stats {
	stats := Stats{Counts: make(map[string]int, len(schema.Categories))}
	for _, c := range schema.Categories {
		stats.Counts[c] = 0
	}
	for _, r := range records {
		stats.Counts[schema.Classify(r)]++
		stats.Total++
	}
	return stats
}
