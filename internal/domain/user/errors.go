package user

import "errors"

var ErrInvalidToken = errors.New("invalid token")
