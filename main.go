package main

import (
	"os"

	"github.com/sirupsen/logrus"

	_ "github.com/denysvitali/ev-nearby/cmd/detail"
	_ "github.com/denysvitali/ev-nearby/cmd/locate"
	"github.com/denysvitali/ev-nearby/cmd/root"
	_ "github.com/denysvitali/ev-nearby/cmd/search"
	_ "github.com/denysvitali/ev-nearby/cmd/version"
	_ "github.com/denysvitali/ev-nearby/cmd/watch"
)

func main() {
	if err := root.RootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
