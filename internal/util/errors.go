package util

import "errors"

var (
	ErrCategoryRequired = errors.New("categoryId is required")
	ErrImportFailed     = errors.New("progress data could not be imported")
)
