package service

import "errors"

var (
	ErrInvalidSubscription = errors.New("invalid subscription")
	ErrInvalidPriceUpdate  = errors.New("invalid price update")
	ErrInvalidProductID    = errors.New("invalid product id")
)
