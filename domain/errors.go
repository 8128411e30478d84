package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	// marketplace state machine
	ErrNotListed         = errors.New("token is not listed")
	ErrInsufficientFunds = errors.New("offered amount is below the listed price")
	ErrNotSeller         = errors.New("caller is not the recorded seller")
	ErrInvalidDataLength = errors.New("invalid listing payload length")

	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrInvalidChainId      = errors.New("invalid chain id")

	// request error
	ErrInvalidAddress = errors.New("Invalid address")
)
