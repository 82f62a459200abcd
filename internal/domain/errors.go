package domain

import "errors"

var (
	ErrEmptyText          = errors.New("text is empty")
	ErrTextTooLarge       = errors.New("text too large")
	ErrAnalysisInProgress = errors.New("analysis already in progress")
	ErrInvalidFileType    = errors.New("invalid file type: please upload a .txt file")
	ErrFileTooLarge       = errors.New("file too large")
	ErrNoResults          = errors.New("no analysis results to export")
	ErrUnsupportedFormat  = errors.New("unsupported export format")
	ErrStoreUnavailable   = errors.New("session store unavailable")
)
