package main

import "github.com/mvp-joe/pydocjson/internal/cli"

func main() {
	cli.Execute()
}
