package main

import (
	"beleidsgraaf/internal/server"
	"beleidsgraaf/internal/util"
	"beleidsgraaf/pkg/logger"
	"beleidsgraaf/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
