package domain

import "errors"

var (
	// Photo pipeline errors. All of them end as the generic failure reply.
	ErrImageRetrieval = errors.New("image retrieval failed")
	ErrImageTooLarge  = errors.New("image exceeds size limit")
	ErrInference      = errors.New("inference failed")
	ErrEmptyResponse  = errors.New("inference returned empty response")

	// Delivery errors
	ErrPayloadParse = errors.New("cannot parse update payload")
	ErrTransport    = errors.New("telegram transport failed")

	ErrInvalidArgument = errors.New("invalid argument")
)
