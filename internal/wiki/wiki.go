// Package wiki is the wiki subsystem stub. There is no REST endpoint for
// wiki pages (a wiki is its own git repository), so the only real capability
// is deriving whether a wiki exists and where to find it in a browser. The
// page operations are declared so the presentation layer has a stable
// surface to grow into, and all return ErrNotImplemented.
package wiki

import (
	"errors"
	"fmt"

	"github.com/mfl/ghlite/internal/domain"
)

var (
	// ErrNotImplemented indicates the operation needs wiki git access,
	// which this client does not have.
	ErrNotImplemented = errors.New("wiki page access is not implemented")
	// ErrWikiDisabled indicates the repository has its wiki turned off.
	ErrWikiDisabled = errors.New("repository has no wiki enabled")
)

// Info describes a repository's wiki availability.
type Info struct {
	Available bool
	URL       string // Browser URL; empty when unavailable
}

// Page is a named wiki page. Placeholder for a future implementation.
type Page struct {
	Name    string
	Content string
}

// Check derives wiki availability from the repository metadata already in
// the snapshot; no remote call is made.
func Check(repo domain.Repository) Info {
	if repo.HasWiki == nil || !*repo.HasWiki {
		return Info{}
	}
	return Info{
		Available: true,
		URL:       fmt.Sprintf("https://github.com/%s/wiki", repo.FullName),
	}
}

// Pages would list the pages of a repository's wiki.
func Pages(repo domain.Repository) ([]Page, error) {
	if !Check(repo).Available {
		return nil, ErrWikiDisabled
	}
	return nil, ErrNotImplemented
}

// Update would create or replace a wiki page.
func Update(repo domain.Repository, page Page) error {
	if !Check(repo).Available {
		return ErrWikiDisabled
	}
	return ErrNotImplemented
}
