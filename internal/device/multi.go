package device

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// MultiEnumerator runs several enumerators concurrently and concatenates
// their results. If any of them fails the whole enumeration fails, so a
// partial list is never mistaken for removed devices.
type MultiEnumerator []Enumerator

// Enumerate implements Enumerator.
func (m MultiEnumerator) Enumerate(ctx context.Context) ([]Descriptor, error) {
	results := make([][]Descriptor, len(m))

	g, ctx := errgroup.WithContext(ctx)
	for i, e := range m {
		i, e := i, e
		g.Go(func() error {
			devices, err := e.Enumerate(ctx)
			if err != nil {
				return err
			}
			results[i] = devices
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Descriptor
	for _, r := range results {
		all = append(all, r...)
	}
	if all == nil {
		all = []Descriptor{}
	}
	return all, nil
}
