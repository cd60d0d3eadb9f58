package main

import "go.uber.org/zap"

var playerLog = zap.NewNop()

func enableDebugLogging(l *zap.Logger) {
	playerLog = l
}
