package domain

import "errors"

var (
	ErrEmptyInput   = errors.New("input is empty")
	ErrTooShort     = errors.New("text too short for summarization")
	ErrTooLong      = errors.New("input exceeds maximum length")
	ErrChunking     = errors.New("chunk splitting failed")
	ErrInitFailed   = errors.New("summarizer initialization failed")
	ErrInference    = errors.New("inference failed")
	ErrTimeout      = errors.New("chunk summarization timed out")
	ErrEmptySummary = errors.New("empty summary generated")
)
