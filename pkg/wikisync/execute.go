package wikisync

import "github.com/osvaldoandrade/wikisync/internal/cli"

// Execute runs the wikisync CLI entrypoint.
func Execute() int {
	return cli.Execute()
}
