package config

import "fmt"

// 构建时通过 -ldflags "-X" 注入
var (
	Version    string = "dev"
	CommitHash string = "n/a"
)

// IsProduction 生产环境：Version 为 "release" 且注入了 CommitHash
func IsProduction() bool {
	return Version == "release" && CommitHash != "" && CommitHash != "n/a"
}

// IsDevelopment 判断是否为开发环境
func IsDevelopment() bool {
	return !IsProduction()
}

// BuildInfo 返回用于启动日志的版本描述
func BuildInfo() string {
	return fmt.Sprintf("image hoster %s (%s)", Version, CommitHash)
}
