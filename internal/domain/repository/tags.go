package repository

import (
	"database/sql"
	"strings"
)

// Tags are stored as a comma-separated text column to keep the stdlib
// database/sql scanning path simple.

func tagsToArray(tags []string) string {
	return strings.Join(tags, ",")
}

func arrayToTags(col sql.NullString) []string {
	if !col.Valid || col.String == "" {
		return nil
	}
	return strings.Split(col.String, ",")
}
