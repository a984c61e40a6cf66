package extract

import (
	"errors"
	"net/url"
	"slices"
	"strings"

	"nodup/internal/models"
	"nodup/internal/structures"
)

// ErrNoScope is returned for items that carry no conversation scope.
var ErrNoScope = errors.New("item has no scope")

type Kind int

const (
	KindNone Kind = iota
	KindLink
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindLink:
		return "link"
	case KindImage:
		return "image"
	default:
		return "none"
	}
}

// Extraction is the dedup-relevant part of an incoming item.
// Link is set for KindLink and Image for KindImage.
type Extraction struct {
	Scope       string
	UserID      string
	DisplayName string
	MessageLink string
	Kind        Kind
	Link        string
	Image       []byte
}

type ExtractorInterface interface {
	Extract(item *models.IncomingItem) (*Extraction, error)
}

type Extractor struct {
	ignoredDomains []string
}

func NewExtractor(conf *structures.Config) ExtractorInterface {
	domains := make([]string, 0, len(conf.Dedup.IgnoredDomains))
	for _, d := range conf.Dedup.IgnoredDomains {
		domains = append(domains, strings.ToLower(strings.TrimSpace(d)))
	}
	return &Extractor{ignoredDomains: domains}
}

// Extract picks the item's identity source: image bytes first, then the
// forward link, then the text when the whole text is an absolute URL.
func (e *Extractor) Extract(item *models.IncomingItem) (*Extraction, error) {
	scope := NormalizeScope(item.Scope)
	if scope == "" {
		return nil, ErrNoScope
	}
	out := &Extraction{
		Scope:       scope,
		UserID:      item.UserID,
		DisplayName: strings.TrimSpace(item.DisplayName),
		MessageLink: item.MessageLink,
	}

	switch {
	case len(item.Image) > 0:
		out.Kind = KindImage
		out.Image = item.Image
	case item.ForwardLink != "":
		if link, ok := Canonicalize(item.ForwardLink); ok {
			out.Kind = KindLink
			out.Link = link
		}
	default:
		if link, ok := Canonicalize(item.Text); ok && !e.filtered(scope, link) {
			out.Kind = KindLink
			out.Link = link
		}
	}
	return out, nil
}

// filtered drops links to messages of the same scope, invite links and ignored domains.
func (e *Extractor) filtered(scope, link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return true
	}
	host := u.Hostname()
	if host == "t.me" {
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		switch segments[0] {
		case "c":
			return len(segments) > 1 && NormalizeScope(segments[1]) == scope
		case "joinchat":
			return true
		}
		return false
	}
	return slices.Contains(e.ignoredDomains, host)
}

// NormalizeScope strips the supergroup "-100" prefix so both id forms map to one scope.
func NormalizeScope(scope string) string {
	scope = strings.TrimSpace(scope)
	if rest, ok := strings.CutPrefix(scope, "-100"); ok && rest != "" {
		return rest
	}
	return scope
}

// Canonicalize parses s as an absolute http(s) URL and returns it with a
// lowercase scheme and host and a non-empty path.
func Canonicalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return "", false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" && u.RawPath == "" {
		u.Path = "/"
	}
	return u.String(), true
}
