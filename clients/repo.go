package clients

import (
	"context"

	"github.com/jrsteele09/go-oauth2-core/oauth2"
)

type Repo interface {
	Count(ctx context.Context, clientID oauth2.ClientID) (int, error)
	Upsert(ctx context.Context, client *Client) error
	Delete(ctx context.Context, clientID oauth2.ClientID) error
	Get(ctx context.Context, clientID oauth2.ClientID) (*Client, error)
	List(ctx context.Context, owner string, offset, limit int) ([]*Client, error)
}
