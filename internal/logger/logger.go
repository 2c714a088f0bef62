// Package logger builds the shared zap logger. Development mode gets the
// human-readable console encoder, production gets JSON.
package logger

import (
	"go.uber.org/zap"
)

var Log *zap.Logger

func NewLogger(production bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)

	if production {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}

	Log = l
	return l
}
