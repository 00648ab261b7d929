package node

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNoNodes is raised at construction when the roster is empty. This is a
// configuration error: the process should not start without nodes.
var ErrNoNodes = errors.New("node: pool requires at least one link")

// ErrNoAvailableNode is returned by Best when no link is CONNECTED. It is
// recoverable: callers may retry later or surface it to the end user.
var ErrNoAvailableNode = errors.New("node: no connected link available")

// DefaultSelectionWindow is how long a best-node decision stays cached.
const DefaultSelectionWindow = 30 * time.Second

// Pool holds the fixed set of links and selects the least-loaded healthy one.
// The decision is cached for a short window so frequent requests do not
// rescan on every call; the cache is dropped the moment the cached link's
// observed state leaves CONNECTED.
type Pool struct {
	links  []*Link // registration order; ties break by this order
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	cached   *Link
	cachedAt time.Time
}

// NewPool builds a pool over the given links. The slice order is the
// registration order used for deterministic tie-breaking.
func NewPool(links []*Link, window time.Duration) (*Pool, error) {
	if len(links) == 0 {
		return nil, ErrNoNodes
	}
	if window <= 0 {
		window = DefaultSelectionWindow
	}
	return &Pool{
		links:  links,
		window: window,
		now:    time.Now,
	}, nil
}

// Links returns the pool members in registration order.
func (p *Pool) Links() []*Link {
	return p.links
}

// Best returns the CONNECTED link with the lowest penalty score. A cached
// decision younger than the selection window is returned as-is, provided the
// cached link is still CONNECTED.
func (p *Pool) Best() (*Link, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil &&
		p.now().Sub(p.cachedAt) < p.window &&
		p.cached.Status() == StatusConnected {
		return p.cached, nil
	}

	best := p.scan(func(*Link) bool { return true })
	if best == nil {
		p.cached = nil
		return nil, ErrNoAvailableNode
	}

	p.cached = best
	p.cachedAt = p.now()
	return best, nil
}

// BestInRegion returns the lowest-penalty CONNECTED link whose region label
// matches. It never consults or refreshes the selection cache: region lookups
// are rare (migration decisions) and must see fresh state.
func (p *Pool) BestInRegion(region string) (*Link, bool) {
	if region == "" {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	best := p.scan(func(l *Link) bool { return l.Region() == region })
	if best == nil {
		return nil, false
	}
	return best, true
}

// scan orders all links by penalty ascending (stable, so registration order
// wins ties) and returns the first CONNECTED one accepted by keep.
func (p *Pool) scan(keep func(*Link) bool) *Link {
	ordered := make([]*Link, len(p.links))
	copy(ordered, p.links)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Penalty() < ordered[j].Penalty()
	})

	for _, l := range ordered {
		if l.Status() == StatusConnected && keep(l) {
			return l
		}
	}
	return nil
}

// Stats snapshots every member link, in registration order.
func (p *Pool) Stats() []Stats {
	out := make([]Stats, 0, len(p.links))
	for _, l := range p.links {
		out = append(out, l.Stats())
	}
	return out
}

// AnyConnected reports whether at least one link is usable. Readiness probes
// rely on this.
func (p *Pool) AnyConnected() bool {
	for _, l := range p.links {
		if l.Status() == StatusConnected {
			return true
		}
	}
	return false
}
