package main

import (
	"net/http"

	"github.com/polarlauncher/polar/cmd"
	"github.com/polarlauncher/polar/internals/ownhttp"
)

func main() {
	// replace default http client so everything carries our User-Agent
	http.DefaultClient = ownhttp.New()

	cmd.Execute()
}
