package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jrsteele09/go-oauth2-core/clients"
	"github.com/jrsteele09/go-oauth2-core/internal/config"
	"github.com/jrsteele09/go-oauth2-core/internal/database"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/oauthmodel"
	"github.com/jrsteele09/go-oauth2-core/token/jwt"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

// oauthFailureExitCode is returned when the token engine rejects a request.
const oauthFailureExitCode = 2

func getCommands(cfg config.Config) []*cli.Command {
	return []*cli.Command{
		migrateCommand(cfg),
		grantCommand(cfg),
		readCommand(cfg),
		revokeCommand(cfg),
		introspectCommand(cfg),
		jwksCommand(cfg),
	}
}

func tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "token",
		Aliases:  []string{"t"},
		Required: true,
		Usage:    "Access token value",
	}
}

func migrateCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the token store schema migrations",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			db, err := database.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.Migrate(db, cfg.GetDBDriver())
		},
	}
}

func grantCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "grant",
		Usage: "Issue an access token for a client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "grant-type", Aliases: []string{"g"}, Required: true, Usage: "authorization_code, refresh_token, password, client_credentials or implicit"},
			&cli.StringFlag{Name: "client-id", Aliases: []string{"c"}, Required: true, Usage: "Authenticated client id"},
			&cli.StringSliceFlag{Name: "client-scope", Usage: "Scope registered on the client (repeatable)"},
			&cli.DurationFlag{Name: "access-validity", Usage: "Client access token validity override"},
			&cli.DurationFlag{Name: "refresh-validity", Usage: "Client refresh token validity override"},
			&cli.StringFlag{Name: "scope", Aliases: []string{"s"}, Usage: "Requested scope, space separated"},
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Resource owner for password and implicit grants"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Resource owner password", Sources: cli.EnvVars("OAUTH2_PASSWORD")},
			&cli.StringFlag{Name: "refresh-token", Usage: "Refresh token to redeem"},
			&cli.StringFlag{Name: "code", Usage: "Authorization code to redeem"},
			&cli.StringFlag{Name: "redirect-uri", Usage: "Redirect URI the code was issued for"},
			&cli.StringFlag{Name: "state", Usage: "State the code was issued with"},
			&cli.StringFlag{Name: "code-verifier", Usage: "PKCE code verifier"},
			&cli.StringSliceFlag{Name: "user", Usage: "Seed a verified user as name:password (repeatable)"},
			&cli.BoolFlag{Name: "metrics", Usage: "Print grant metrics after the request"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := newContainer(ctx, cfg, containerOptions{store: cmd.Root().String("store"), seedUsers: cmd.StringSlice("user")})
			if err != nil {
				return err
			}
			defer c.Close()

			client := clients.New(oauth2.ClientID(cmd.String("client-id")), cmd.String("client-id"), "cli")
			client.Scopes = oauth2.ScopeSetFromStrings(cmd.StringSlice("client-scope"))
			client.AccessTokenValidity = cmd.Duration("access-validity")
			client.RefreshTokenValidity = cmd.Duration("refresh-validity")

			req := &oauth2.TokenRequest{
				GrantType:    oauth2.GrantType(cmd.String("grant-type")),
				ClientID:     client.ID,
				Username:     oauth2.Username(cmd.String("username")),
				Password:     cmd.String("password"),
				RefreshToken: oauth2.TokenID(cmd.String("refresh-token")),
				Code:         oauth2.AuthorizationCode(cmd.String("code")),
				RedirectURI:  cmd.String("redirect-uri"),
				State:        cmd.String("state"),
				Scopes:       oauth2.ParseScope(cmd.String("scope")),
				CodeVerifier: cmd.String("code-verifier"),
			}
			view, err := c.service.Grant(ctx, client, req)
			if cmd.Bool("metrics") {
				if mErr := writeMetrics(cmd.Root().ErrWriter, c.metrics); mErr != nil {
					return mErr
				}
			}
			if err != nil {
				return oauthFailure(cmd.Root().Writer, err)
			}
			return writeJSON(cmd.Root().Writer, view.TokenResponse())
		},
	}
}

func readCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "read",
		Usage: "Read a live access token",
		Flags: []cli.Flag{
			tokenFlag(),
			&cli.StringFlag{Name: "client-id", Aliases: []string{"c"}, Usage: "Only read tokens issued to this client"},
			&cli.BoolFlag{Name: "user", Usage: "Print the token's user instead of the token"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := newContainer(ctx, cfg, containerOptions{store: cmd.Root().String("store")})
			if err != nil {
				return err
			}
			defer c.Close()

			value := oauth2.TokenID(cmd.String("token"))
			var out any
			switch {
			case cmd.Bool("user"):
				out, err = c.service.ReadAccessTokenUser(ctx, value)
			case cmd.String("client-id") != "":
				out, err = c.service.ReadAccessTokenWithClient(ctx, value, oauth2.ClientID(cmd.String("client-id")))
			default:
				out, err = c.service.ReadAccessToken(ctx, value)
			}
			if err != nil {
				return oauthFailure(cmd.Root().Writer, err)
			}
			return writeJSON(cmd.Root().Writer, out)
		},
	}
}

func revokeCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "revoke",
		Usage: "Revoke an access token on behalf of the client it was issued to",
		Flags: []cli.Flag{
			tokenFlag(),
			&cli.StringFlag{Name: "client-id", Aliases: []string{"c"}, Required: true, Usage: "Client requesting the revocation"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := newContainer(ctx, cfg, containerOptions{store: cmd.Root().String("store")})
			if err != nil {
				return err
			}
			defer c.Close()

			view, err := c.service.Revoke(ctx, oauth2.TokenID(cmd.String("token")), oauth2.ClientID(cmd.String("client-id")))
			if err != nil {
				return oauthFailure(cmd.Root().Writer, err)
			}
			return writeJSON(cmd.Root().Writer, view)
		},
	}
}

func introspectCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "introspect",
		Usage: "Report whether an access token is active",
		Flags: []cli.Flag{tokenFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := newContainer(ctx, cfg, containerOptions{store: cmd.Root().String("store")})
			if err != nil {
				return err
			}
			defer c.Close()

			got, err := c.service.Introspect(ctx, oauth2.TokenID(cmd.String("token")))
			if err != nil {
				return err
			}
			return writeJSON(cmd.Root().Writer, got)
		},
	}
}

func jwksCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "jwks",
		Usage: "Print the public keys of the configured JWT signer",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := newContainer(ctx, cfg, containerOptions{store: storeMemory})
			if err != nil {
				return err
			}
			defer c.Close()

			kp, ok := c.signer.(*jwt.KeyPairSigner)
			if !ok {
				return errors.Errorf("signer type %q has no public keys", cfg.GetJWTSignerType())
			}
			jwks, err := kp.GetJWKS()
			if err != nil {
				return err
			}
			return writeJSON(cmd.Root().Writer, jwks)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// oauthFailure prints protocol errors as an RFC 6749 error body.
func oauthFailure(w io.Writer, err error) error {
	var oauthErr *oauthmodel.Error
	if !errors.As(err, &oauthErr) {
		return err
	}
	body := map[string]string{"error": string(oauthErr.Code)}
	if oauthErr.Description != "" {
		body["error_description"] = oauthErr.Description
	}
	if wErr := writeJSON(w, body); wErr != nil {
		return wErr
	}
	return cli.Exit("", oauthFailureExitCode)
}

func writeMetrics(w io.Writer, reg prometheus.Gatherer) error {
	if w == nil {
		w = os.Stderr
	}
	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			sort.Strings(labels)

			value := m.GetCounter().GetValue()
			if h := m.GetHistogram(); h != nil {
				value = float64(h.GetSampleCount())
			}
			fmt.Fprintf(w, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}
	return nil
}
