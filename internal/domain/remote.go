package domain

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// DefaultRemoteName is the remote the workflow reconciles and pushes to.
const DefaultRemoteName = "origin"

// Transport is the family of protocols a remote URL uses.
type Transport string

const (
	TransportSSH   Transport = "ssh"
	TransportHTTPS Transport = "https"
	TransportHTTP  Transport = "http"
	TransportFile  Transport = "file"
)

var defaultPorts = map[Transport]int{
	TransportSSH:   22,
	TransportHTTPS: 443,
	TransportHTTP:  80,
}

// RemoteLink describes the configured upstream of a repository.
type RemoteLink struct {
	Name      string
	URL       string
	Transport Transport
	Host      string
	Port      int
	Path      string
}

// ParseRemoteLink parses an scp-like, ssh://, http(s):// or local remote URL.
func ParseRemoteLink(name, rawURL string) (RemoteLink, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return RemoteLink{}, fmt.Errorf("%w: empty URL", ErrInvalidRemote)
	}
	if name == "" {
		name = DefaultRemoteName
	}
	ep, err := transport.NewEndpoint(rawURL)
	if err != nil {
		return RemoteLink{}, fmt.Errorf("%w: %v", ErrInvalidRemote, err)
	}
	link := RemoteLink{
		Name: name,
		URL:  rawURL,
		Host: ep.Host,
		Port: ep.Port,
		Path: ep.Path,
	}
	switch ep.Protocol {
	case "ssh", "git+ssh", "ssh+git":
		link.Transport = TransportSSH
	case "https":
		link.Transport = TransportHTTPS
	case "http":
		link.Transport = TransportHTTP
	case "file":
		link.Transport = TransportFile
	default:
		return RemoteLink{}, fmt.Errorf("%w: unsupported protocol %q", ErrInvalidRemote, ep.Protocol)
	}
	if link.Transport != TransportFile {
		if link.Host == "" {
			return RemoteLink{}, fmt.Errorf("%w: missing host in %q", ErrInvalidRemote, rawURL)
		}
		if link.Port == 0 {
			link.Port = defaultPorts[link.Transport]
		}
	}
	return link, nil
}

// IsLocal reports whether the remote lives on the local filesystem.
func (l RemoteLink) IsLocal() bool {
	return l.Transport == TransportFile
}

// Address returns host:port for the connectivity probe.
func (l RemoteLink) Address() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

// Slug returns a filesystem-safe name such as "octo_widget".
func (l RemoteLink) Slug() string {
	p := strings.Trim(strings.TrimSuffix(strings.Trim(l.Path, "/"), ".git"), "/")
	if l.IsLocal() {
		p = path.Base(strings.ReplaceAll(p, "\\", "/"))
	}
	p = strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(p)
	if p == "" || p == "." {
		return "repository"
	}
	return p
}

// GitHubRepository returns owner and name when the remote is hosted on github.com.
func (l RemoteLink) GitHubRepository() (owner, repo string, ok bool) {
	if !strings.EqualFold(l.Host, "github.com") {
		return "", "", false
	}
	parts := strings.Split(strings.TrimSuffix(strings.Trim(l.Path, "/"), ".git"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Redacted returns the URL with any embedded password masked.
func (l RemoteLink) Redacted() string {
	return RedactURL(l.URL)
}

// RedactURL masks the password of a URL with userinfo. Inputs that are not
// absolute URLs, such as scp-like addresses, are returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}
