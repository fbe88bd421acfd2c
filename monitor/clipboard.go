package monitor

import (
	"context"
	"sort"

	"github.com/pagescope/pagescope/pkg/browserapi"
	"github.com/pagescope/pagescope/pkg/capability"
)

// Clipboard wraps the clipboard entry point. Successful reads and writes are
// reported with length or content-type context; failures pass through
// unobserved.
type Clipboard struct {
	real browserapi.Clipboard
	mon  *Monitor
}

var _ browserapi.Clipboard = (*Clipboard)(nil)

// ReadText delegates to the real read and reports the returned length.
func (c *Clipboard) ReadText(ctx context.Context) (string, error) {
	text, err := c.real.ReadText(ctx)
	if err != nil {
		return "", err
	}

	c.mon.observe(ctx, capability.ClipboardRead, capability.ActionAccessed,
		capability.ClipboardContext{Length: len(text), Kind: "text"})
	return text, nil
}

// Read delegates to the structured read and reports the content types seen.
func (c *Clipboard) Read(ctx context.Context) ([]browserapi.ClipboardItem, error) {
	items, err := c.real.Read(ctx)
	if err != nil {
		return nil, err
	}

	c.mon.observe(ctx, capability.ClipboardRead, capability.ActionAccessed,
		capability.ClipboardContext{Types: itemTypes(items), Kind: "items"})
	return items, nil
}

// WriteText delegates to the real write and reports the written length.
func (c *Clipboard) WriteText(ctx context.Context, text string) error {
	if err := c.real.WriteText(ctx, text); err != nil {
		return err
	}

	c.mon.observe(ctx, capability.ClipboardWrite, capability.ActionAccessed,
		capability.ClipboardContext{Length: len(text), Kind: "text"})
	return nil
}

// Write delegates to the structured write and reports the content types.
func (c *Clipboard) Write(ctx context.Context, items []browserapi.ClipboardItem) error {
	if err := c.real.Write(ctx, items); err != nil {
		return err
	}

	c.mon.observe(ctx, capability.ClipboardWrite, capability.ActionAccessed,
		capability.ClipboardContext{Types: itemTypes(items), Kind: "items"})
	return nil
}

// itemTypes collects the distinct content types across items, sorted for
// stable context payloads.
func itemTypes(items []browserapi.ClipboardItem) []string {
	seen := make(map[string]struct{})
	for _, item := range items {
		for _, t := range item.Types {
			seen[t] = struct{}{}
		}
	}

	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
