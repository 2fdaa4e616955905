package auth

// Identity 已认证调用方，作为值显式传入每个业务调用
type Identity struct {
	UserID   uint
	Username string
}
