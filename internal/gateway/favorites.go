package gateway

import (
	"context"
	"net/url"
)

// Favorites are served by wahabridge, not by the gateway itself.

func (c *Client) favoritesPath(suffix string) string {
	return "/favorites/" + url.PathEscape(c.session) + suffix
}

// ListFavorites returns pinned chat ids in insertion order.
func (c *Client) ListFavorites(ctx context.Context) ([]string, error) {
	var out struct {
		Favorites []string `json:"favorites"`
	}
	if err := c.Get(ctx, c.favoritesPath(""), &out); err != nil {
		return nil, err
	}
	return out.Favorites, nil
}

// AddFavorite pins chatID.
func (c *Client) AddFavorite(ctx context.Context, chatID string) error {
	return c.Post(ctx, c.favoritesPath("/"+url.PathEscape(chatID)), nil, nil)
}

// RemoveFavorite unpins chatID.
func (c *Client) RemoveFavorite(ctx context.Context, chatID string) error {
	return c.Delete(ctx, c.favoritesPath("/"+url.PathEscape(chatID)), nil)
}

// IsFavorite reports whether chatID is pinned.
func (c *Client) IsFavorite(ctx context.Context, chatID string) (bool, error) {
	var out struct {
		IsFavorite bool `json:"isFavorite"`
	}
	if err := c.Get(ctx, c.favoritesPath("/"+url.PathEscape(chatID)+"/check"), &out); err != nil {
		return false, err
	}
	return out.IsFavorite, nil
}
