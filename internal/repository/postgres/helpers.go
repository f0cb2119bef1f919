package postgres

import "strconv"

// itoa keeps placeholder construction readable in dynamically built queries.
func itoa(n int) string {
	return strconv.Itoa(n)
}
