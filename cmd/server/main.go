package main

import "quizarena/internal/cli"

func main() {
	if err := cli.Execute(); err != nil {
		cli.Fatal(err)
	}
}
