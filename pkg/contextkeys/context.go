package contextkeys

type contextKey string

// DBContextKey holds the *gorm.DB (pool or transaction) for the request.
const DBContextKey = contextKey("db")

// Gin context keys set by the auth middlewares.
const (
	UserIDKey       = "userID"
	RoleKey         = "role"
	SubscriberIDKey = "subscriberID"
)
