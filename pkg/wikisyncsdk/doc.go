// Package wikisyncsdk embeds the volume sync engine in another Go process.
//
// A Client owns a set of named volumes, each a git working tree. Every
// operation takes the volume's lock, so a Client can be shared freely
// between goroutines:
//
//	client, err := wikisyncsdk.Open(ctx, wikisyncsdk.DefaultConfig(
//		wikisyncsdk.Volume{Name: "notes", Root: "/srv/wiki/notes"},
//	))
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	report, err := client.Status(ctx, "notes")
//
// Errors wrap the sentinels exported by this package; test them with
// errors.Is.
package wikisyncsdk
