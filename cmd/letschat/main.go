package main

import (
	"github.com/SandipanKhanra/letschat/app"
)

func main() {
	app.New(nil).Run()
}
