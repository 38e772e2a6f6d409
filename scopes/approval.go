package scopes

import (
	"strings"

	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/oauthmodel"
)

// ApprovalResolver turns the resource owner's consent form into the approved scope set.
type ApprovalResolver struct{}

// Resolve keeps each requested scope whose approval parameter is "true",
// compared case-insensitively. Scopes that were not requested are ignored.
func (ApprovalResolver) Resolve(req *oauth2.AuthorizationRequest, approvals map[string]string) (oauth2.ScopeSet, error) {
	var approved []oauth2.ScopeID
	if req != nil {
		for _, id := range req.Scopes {
			if strings.EqualFold(approvals[string(id)], "true") {
				approved = append(approved, id)
			}
		}
	}
	if len(approved) == 0 {
		return nil, oauthmodel.UserDeniedAuthorization("user denied access")
	}
	return oauth2.NewScopeSet(approved...), nil
}
