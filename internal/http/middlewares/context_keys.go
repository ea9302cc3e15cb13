package middlewares

const (
	CtxRequestID = "request_id"

	ctxUserIDKey  = "auth.userID"
	ctxNameKey    = "auth.name"
	ctxIsAdminKey = "auth.isAdmin"
)
