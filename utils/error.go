package utils

import "errors"

var (
	ErrorRecordNotFound = errors.New("record not found")
	ErrorShopIdRequired = errors.New("shop id is required")
	ErrorOffline        = errors.New("no connectivity")
	ErrorTokenExpired   = errors.New("api token expired")
)

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
