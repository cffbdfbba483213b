package services

import (
	"database/sql"
	stderrors "errors"
	"strings"
	"time"
)

func isNotFound(err error) bool {
	return stderrors.Is(err, sql.ErrNoRows)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
