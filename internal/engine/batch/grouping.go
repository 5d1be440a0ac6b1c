// internal/engine/batch/grouping.go
package batch

import (
	urlutil "github.com/law-makers/sitescrape/internal/utils/url"
	"github.com/law-makers/sitescrape/pkg/models"
)

// Request is a scrape request with its position in the input
type Request struct {
	Index int
	Opts  models.RequestOptions
}

// GroupByDomain groups requests by host, keeping input order inside each
// group. Unparseable URLs share the "default" group.
func GroupByDomain(requests []models.RequestOptions) map[string][]Request {
	groups := make(map[string][]Request)
	for i, req := range requests {
		host := urlutil.Host(req.URL)
		if host == "" {
			host = "default"
		}
		groups[host] = append(groups[host], Request{Index: i, Opts: req})
	}
	return groups
}

// Interleave orders requests round-robin across hosts so consecutive
// scrapes rarely hit the same site. Hosts are visited in order of their
// first appearance.
func Interleave(requests []models.RequestOptions) []Request {
	groups := GroupByDomain(requests)

	var hosts []string
	seen := make(map[string]bool)
	for _, req := range requests {
		host := urlutil.Host(req.URL)
		if host == "" {
			host = "default"
		}
		if !seen[host] {
			seen[host] = true
			hosts = append(hosts, host)
		}
	}

	out := make([]Request, 0, len(requests))
	for round := 0; len(out) < len(requests); round++ {
		for _, host := range hosts {
			if round < len(groups[host]) {
				out = append(out, groups[host][round])
			}
		}
	}
	return out
}
