package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// PlayerIndex lists the player names the backend knows about. Numeric
// entries are stringified and blank entries skipped.
func (c *Client) PlayerIndex(ctx context.Context) ([]string, error) {
	var raw []any
	if err := c.Get(ctx, "/players", &raw); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(raw))
	for _, entry := range raw {
		var name string
		switch v := entry.(type) {
		case string:
			name = v
		case json.Number:
			name = v.String()
		case nil:
			continue
		default:
			name = fmt.Sprint(v)
		}
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// PlayerProfile fetches the full Player-shaped record for a name or slug.
func (c *Client) PlayerProfile(ctx context.Context, name string) (map[string]any, error) {
	var out map[string]any
	if err := c.Get(ctx, "/player/"+slugSegment(name), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Archetype fetches the archetype classification and season totals.
func (c *Client) Archetype(ctx context.Context, name string) (map[string]any, error) {
	var out map[string]any
	if err := c.Get(ctx, "/archetype/"+nameSegment(name), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Comps fetches the NBA comparison rows for a player.
func (c *Client) Comps(ctx context.Context, name string) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.Get(ctx, "/comps/"+nameSegment(name), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// slugSegment hyphenates whitespace before escaping, matching /player/{slug}.
func slugSegment(name string) string {
	return url.PathEscape(strings.Join(strings.Fields(name), "-"))
}

func nameSegment(name string) string {
	return url.PathEscape(strings.Join(strings.Fields(name), " "))
}
