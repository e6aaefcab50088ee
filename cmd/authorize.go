package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/services"
	"github.com/desertthunder/tapedeck/internal/tasks"
)

// promptAuthorizer asks on the terminal before anything is written to the user's library.
type promptAuthorizer struct {
	provider  string
	in        io.Reader
	out       io.Writer
	assumeYes bool

	// userToken is the user-level grant for providers that need one. Only Apple Music does.
	userToken  string
	needsToken bool
}

func (r *Runner) authorizer(provider services.MusicProvider, assumeYes bool) tasks.Authorizer {
	_, needsToken := provider.(*services.AppleMusicService)
	return &promptAuthorizer{
		provider:   provider.Name(),
		in:         r.input,
		out:        r.output,
		assumeYes:  assumeYes,
		userToken:  r.config.Apple.UserToken,
		needsToken: needsToken,
	}
}

func (a *promptAuthorizer) Authorize(context.Context) (models.AuthorizationState, error) {
	if a.needsToken && strings.TrimSpace(a.userToken) == "" {
		return models.AuthDenied, nil
	}
	if a.assumeYes {
		return models.AuthAuthorized, nil
	}

	fmt.Fprintf(a.out, "Create a playlist in your %s library? [y/N] ", a.provider)

	line, _ := bufio.NewReader(a.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return models.AuthAuthorized, nil
	default:
		return models.AuthDenied, nil
	}
}
