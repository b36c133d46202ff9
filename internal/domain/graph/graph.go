// Package graph holds the related-artist graph of one run.
//
// Relations are fetched lazily, at most once per artist, from a
// source.RelatedArtists collaborator. A node records whether it has been
// populated so an artist without related artists is not fetched again.
package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/internal/domain/source"
	"github.com/okian/soltify/pkg/logger"
	"github.com/okian/soltify/pkg/metrics"
)

// Graph caches related-artist adjacency keyed by artist id.
type Graph struct {
	source source.RelatedArtists
	nodes  map[string]*model.ArtistNode
	logger logger.Logger
}

// Option applies a configuration option to the Graph.
type Option func(*Graph)

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithNodes seeds the graph with previously saved nodes. Only populated
// nodes are kept; the rest will be fetched on first use.
func WithNodes(nodes []model.ArtistNode) Option {
	return func(g *Graph) {
		for i := range nodes {
			n := nodes[i]
			if !n.Populated {
				continue
			}
			n.Related = append([]model.Relation(nil), n.Related...)
			g.nodes[n.ID] = &n
		}
	}
}

// New creates a Graph backed by src.
func New(src source.RelatedArtists, opts ...Option) *Graph {
	g := &Graph{
		source: src,
		nodes:  make(map[string]*model.ArtistNode),
		logger: logger.Nop(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Related returns the artists related to artistID, fetching them from the
// source the first time the artist is seen. A source failure is returned
// wrapped in model.ErrUpstreamUnavailable and leaves the node unpopulated.
func (g *Graph) Related(ctx context.Context, artistID string) ([]model.Relation, error) {
	if n, ok := g.nodes[artistID]; ok && n.Populated {
		metrics.RecordGraphCacheHit()
		return n.Related, nil
	}

	metrics.RecordGraphCacheMiss()
	related, err := g.source.RelatedArtists(ctx, artistID)
	if err != nil {
		g.logger.Warn(ctx, "related artists fetch failed",
			logger.String("artist_id", artistID),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: related artists of %s: %w", model.ErrUpstreamUnavailable, artistID, err)
	}
	if related == nil {
		related = []model.Relation{}
	}

	n := g.node(artistID)
	n.Related = related
	n.Populated = true

	g.logger.Debug(ctx, "related artists cached",
		logger.String("artist_id", artistID),
		logger.Int("related", len(related)),
	)

	return related, nil
}

// Name records the display name of an artist.
func (g *Graph) Name(artistID, name string) {
	if name == "" {
		return
	}
	g.node(artistID).Name = name
}

// Populated reports whether the relations of artistID are cached.
func (g *Graph) Populated(artistID string) bool {
	n, ok := g.nodes[artistID]
	return ok && n.Populated
}

// Len returns the number of populated nodes.
func (g *Graph) Len() int {
	count := 0
	for _, n := range g.nodes {
		if n.Populated {
			count++
		}
	}
	return count
}

// Nodes returns a copy of every populated node ordered by artist id.
func (g *Graph) Nodes() []model.ArtistNode {
	out := make([]model.ArtistNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		if !n.Populated {
			continue
		}
		cp := *n
		cp.Related = append([]model.Relation{}, n.Related...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *Graph) node(artistID string) *model.ArtistNode {
	n, ok := g.nodes[artistID]
	if !ok {
		n = &model.ArtistNode{ID: artistID}
		g.nodes[artistID] = n
	}
	return n
}
