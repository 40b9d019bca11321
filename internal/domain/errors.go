package domain

import "errors"

var (
	// ErrMissingMessage signals a chat request without a message.
	ErrMissingMessage = errors.New("message is required")
	// ErrMissingAPIKey signals a chat request without an LLM credential.
	ErrMissingAPIKey = errors.New("api key is required")
	// ErrMissingQuery signals a search request without a query.
	ErrMissingQuery = errors.New("query is required")

	// ErrInvalidAPIKey signals that the LLM provider rejected the credential.
	ErrInvalidAPIKey = errors.New("invalid api key")
	// ErrLLMUnavailable signals a non-auth LLM provider failure.
	ErrLLMUnavailable = errors.New("llm provider unavailable")
	// ErrEmptyCompletion signals an LLM response with no usable text.
	ErrEmptyCompletion = errors.New("empty completion")

	// ErrSearchFailed signals a GitHub search failure. It never escapes the
	// search usecase: the aggregator degrades it to an empty category list.
	ErrSearchFailed = errors.New("search failed")
)
