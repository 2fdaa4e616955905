package utils

import (
	"log"
	"runtime/debug"
)

// SafeGo 启动后台任务，panic 只记录日志不会终止进程
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[SafeGo] task %s panicked: %v\n%s", name, err, debug.Stack())
			}
		}()
		fn()
	}()
}
