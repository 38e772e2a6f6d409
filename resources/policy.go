package resources

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-oauth2-core/authorities"
	"github.com/jrsteele09/go-oauth2-core/validation"
	"github.com/rs/zerolog/log"
)

// DefaultPolicy checks that the id is set, the resource is an absolute or
// rooted URI, the method is known and every authority exists in lookup.
func DefaultPolicy(ctx context.Context, lookup authorities.Lookup) Policy {
	return Policy{
		ResourceIDRule: validation.NewRule("resourceId", "resource id is required",
			func(r *SecuredResource) bool { return strings.TrimSpace(r.ID) != "" }),
		ResourceRule: validation.NewRule("resource", "resource must be an absolute or rooted URI",
			func(r *SecuredResource) bool { return validResourceURI(r.Resource) }),
		MethodRule: validation.NewRule("method", "method must be one of GET, POST, PUT, PATCH, DELETE, ALL",
			func(r *SecuredResource) bool { return r.Method.Valid() }),
		AuthoritiesRule: validation.NewRule("authorities", "authorities must be registered",
			func(r *SecuredResource) bool { return authoritiesExist(ctx, lookup, r.Authorities) }),
	}
}

func validResourceURI(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() || strings.HasPrefix(u.Path, "/")
}

func authoritiesExist(ctx context.Context, lookup authorities.Lookup, codes []string) bool {
	if lookup == nil {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	found, err := lookup.FindByCodes(ctx, codes)
	if err != nil {
		log.Warn().Err(err).Msg("authority lookup failed")
		return false
	}
	return authorities.ContainsAll(found, codes)
}
