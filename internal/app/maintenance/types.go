package maintenance

type GCOptions struct {
	Prune string
}
