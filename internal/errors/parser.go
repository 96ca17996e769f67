package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed error: code constant plus a safe user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// IsDuplicateKey reports whether err is a uniqueness violation from either
// PostgreSQL (23505) or SQLite (test database). The rating upsert relies on
// this to catch the insert race on (user_id, store_id).
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique constraint failed")
}

// ParseError maps raw storage/transport errors to a code and a message safe
// to return to clients. Raw constraint errors never reach the client.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Internal server error"}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	if IsDuplicateKey(err) {
		return parseDuplicateKeyError(errStr)
	}

	if strings.Contains(errStr, "foreign key constraint") {
		if strings.Contains(errStr, "still referenced") {
			return ErrorInfo{Code: ResourceConflict, Message: "Cannot delete because other records reference it"}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "Referenced record does not exist"}
	}

	if strings.Contains(errStr, "check constraint") {
		if strings.Contains(errStr, "rating") {
			return ErrorInfo{Code: RatingInvalidValue, Message: "Rating must be between 1 and 5"}
		}
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input value"}
	}

	if strings.Contains(errStr, "context deadline exceeded") || strings.Contains(errStr, "timeout") {
		return ErrorInfo{Code: DependencyTimeout, Message: "A dependency timed out. Please try again"}
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return ErrorInfo{Code: DependencyFailure, Message: "An external service is unreachable. Please try again"}
	}

	return ErrorInfo{Code: InternalServerError, Message: "Internal server error"}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	// ratings composite index
	if strings.Contains(errStr, "idx_ratings_user_store") ||
		(strings.Contains(errStr, "ratings") && strings.Contains(errStr, "user_id")) {
		return ErrorInfo{Code: RatingAlreadyExists, Message: "You have already rated this store"}
	}
	if strings.Contains(errStr, "stores") && strings.Contains(errStr, "email") {
		return ErrorInfo{Code: StoreEmailExists, Message: "Store with this email already exists"}
	}
	if strings.Contains(errStr, "email") {
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "User with this email already exists"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Record already exists"}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "store"):
		return "Store not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	case strings.Contains(contextLower, "rating"):
		return "Rating not found"
	}
	return "Requested record not found"
}

// ParseAndRespond parses err and writes the response in one call
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
