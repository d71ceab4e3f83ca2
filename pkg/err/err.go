package errprocess

import (
	"errors"

	"chat_sync_service/pkg/logger"
)

// Set logs the error message and returns it as an error
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}
