package repository

import (
	"strconv"
	"strings"
)

// rebind rewrites ? placeholders as $1, $2, ... for postgres. Queries in this
// package never contain a literal question mark.
func rebind(driver, query string) string {
	if driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
