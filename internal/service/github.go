package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"

	"github.com/compozy/autopush/internal/domain"
)

// PermissionChecker asks the hosting provider whether pushes will be accepted.
type PermissionChecker interface {
	CanPush(ctx context.Context, link domain.RemoteLink) (bool, error)
}

// githubPermissionChecker queries the GitHub REST API with a token.
type githubPermissionChecker struct {
	client *github.Client
}

// NewGithubPermissionChecker returns a checker for github.com remotes, or a
// checker that allows everything when token is empty.
func NewGithubPermissionChecker(token string) PermissionChecker {
	token = strings.TrimSpace(token)
	if token == "" {
		return allowAllChecker{}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return newGithubPermissionChecker(github.NewClient(tc))
}

func newGithubPermissionChecker(client *github.Client) *githubPermissionChecker {
	return &githubPermissionChecker{client: client}
}

// CanPush returns true for remotes not hosted on github.com.
func (c *githubPermissionChecker) CanPush(ctx context.Context, link domain.RemoteLink) (bool, error) {
	if link.Transport != domain.TransportHTTPS {
		return true, nil
	}
	owner, repo, ok := link.GitHubRepository()
	if !ok {
		return true, nil
	}
	ghRepo, resp, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response != nil {
			switch errResp.Response.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
				return false, nil
			}
		}
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to query %s/%s: %w", owner, repo, err)
	}
	perms := ghRepo.GetPermissions()
	return perms["push"] || perms["maintain"] || perms["admin"], nil
}

type allowAllChecker struct{}

func (allowAllChecker) CanPush(context.Context, domain.RemoteLink) (bool, error) {
	return true, nil
}
