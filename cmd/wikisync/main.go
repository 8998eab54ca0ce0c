package main

import (
	"os"

	"github.com/osvaldoandrade/wikisync/pkg/wikisync"
)

func main() {
	os.Exit(wikisync.Execute())
}
