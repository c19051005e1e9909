package models

import "strconv"

func pluralize(n int, label string) string {
	return strconv.Itoa(n) + " " + label
}
