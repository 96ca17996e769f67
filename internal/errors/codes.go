package errors

// Error code constants, format: CATEGORY_SPECIFIC_DETAIL.
// The frontend maps these codes to portal-specific messages and redirects.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed or bad signature
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // token blacklisted
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate user email
	AuthWrongPassword      = "AUTH_WRONG_PASSWORD"      // current password mismatch

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden     = "AUTHZ_FORBIDDEN"      // role not allowed
	AuthzRoleNotFound  = "AUTHZ_ROLE_NOT_FOUND" // no role info on request
	RolePortalMismatch = "ROLE_PORTAL_MISMATCH" // login portal does not match stored role

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // bad request body
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // non-numeric path id
	ValidationWeakPassword = "VALIDATION_WEAK_PASSWORD" // password policy failed

	// ==================== Stores (STORE_) ====================
	StoreNotFound    = "STORE_NOT_FOUND"    // no such store
	StoreEmailExists = "STORE_EMAIL_EXISTS" // duplicate store email

	// ==================== Ratings (RATING_) ====================
	RatingNotFound      = "RATING_NOT_FOUND"      // no such rating
	RatingInvalidValue  = "RATING_INVALID_VALUE"  // rating outside 1-5
	RatingAlreadyExists = "RATING_ALREADY_EXISTS" // duplicate (user, store) pair

	// ==================== Uploads (UPLOAD_) ====================
	UploadPayloadTooLarge = "UPLOAD_PAYLOAD_TOO_LARGE" // image over the hard ceiling
	UploadFailed          = "UPLOAD_FAILED"            // uploader error

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // generic missing row
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // generic duplicate
	ResourceConflict      = "RESOURCE_CONFLICT"       // referenced by other rows

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // unexpected failure
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB failure
	DependencyTimeout     = "DEPENDENCY_TIMEOUT"      // external call timed out
	DependencyFailure     = "DEPENDENCY_FAILURE"      // external service unreachable
)
