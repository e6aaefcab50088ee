package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Token fetches a service credential for the configured provider.
func (r *Runner) Token(ctx context.Context, cmd *cli.Command) error {
	r.useProvider(cmd.String("provider"))

	_, credentials, err := r.musicProvider()
	if err != nil {
		return err
	}

	cred, err := credentials.GetCredential(ctx)
	if err != nil {
		return err
	}

	token := cred.ServiceToken
	if !cmd.Bool("reveal") {
		token = maskToken(token)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]string{"token": token, "storefront": cred.Storefront}, cmd.Bool("pretty"))
	}

	r.writePlain("Token: %s\n", token)
	if cred.Storefront != "" {
		r.writePlain("Storefront: %s\n", cred.Storefront)
	}
	return nil
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
