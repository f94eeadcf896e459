// internal/app/features/students/util.go
package students

import "strconv"

func itoa(n int) string { return strconv.Itoa(n) }
