package httpx

type ctxKey string

// CtxKeyUserID carries the authenticated caller's user id. The session guard
// sets it; the per-user rate limiter reads it.
const CtxKeyUserID ctxKey = "user_id"
