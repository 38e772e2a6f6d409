package authorities

import "context"

// Authority is a named permission that users hold and scopes and resources require.
type Authority struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	// Basic authorities are granted to every new account.
	Basic bool `json:"basic"`
}

type Repo interface {
	Count(ctx context.Context, code string) (int, error)
	Get(ctx context.Context, code string) (*Authority, error)
	List(ctx context.Context) ([]*Authority, error)
	FindByCodes(ctx context.Context, codes []string) ([]*Authority, error)
	Upsert(ctx context.Context, a *Authority) error
	Delete(ctx context.Context, code string) error
}

// Lookup resolves authority codes. Codes that do not exist are left out of the result.
type Lookup interface {
	FindByCodes(ctx context.Context, codes []string) ([]*Authority, error)
}

// ContainsAll reports whether every code is present in found.
func ContainsAll(found []*Authority, codes []string) bool {
	present := make(map[string]struct{}, len(found))
	for _, a := range found {
		if a != nil {
			present[a.Code] = struct{}{}
		}
	}
	for _, c := range codes {
		if _, ok := present[c]; !ok {
			return false
		}
	}
	return true
}
