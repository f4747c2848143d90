package constants

// ContextKeyUserID is the gin context key under which the authenticated
// user id is stored by the auth middleware.
const ContextKeyUserID = "user_id"

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 6

// MinUsernameLength is the minimum accepted username length at registration.
const MinUsernameLength = 3
