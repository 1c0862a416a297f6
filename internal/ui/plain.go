package ui

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// PlainRenderer writes line-oriented progress, suitable for terminals,
// CI, and pipes alike.
type PlainRenderer struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
	quiet  bool
	errors []ErrorEvent
}

// Verify interface implementation at compile time.
var _ Renderer = (*PlainRenderer)(nil)

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:    cfg.Output,
		styles: GetStyles(cfg.NoColor),
		quiet:  cfg.Quiet,
	}
}

// UpdateProgress implements Renderer.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.quiet {
		return
	}

	icon := r.styles.Stage.Render(fmt.Sprintf("[%s]", event.Stage.Icon()))
	switch {
	case event.Total > 0:
		_, _ = fmt.Fprintf(r.out, "%s %d/%d %s\n", icon, event.Current, event.Total, event.Message)
	case event.Message != "":
		_, _ = fmt.Fprintf(r.out, "%s %s\n", icon, event.Message)
	}
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors = append(r.errors, event)

	prefix := r.styles.Error.Render("ERROR")
	if event.IsWarn {
		prefix = r.styles.Warning.Render("WARN")
	}
	_, _ = fmt.Fprintf(r.out, "%s [%s] %v\n", prefix, event.Stage.Icon(), event.Err)
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "%s %s: %d pages, %d chunks, %d records in %s\n",
		r.styles.Success.Render("Complete"),
		stats.Document, stats.Pages, stats.Chunks, stats.Records,
		stats.Duration.Round(100*time.Millisecond))

	if stats.Errors > 0 || stats.Warnings > 0 {
		_, _ = fmt.Fprintf(r.out, "  %d errors, %d warnings\n", stats.Errors, stats.Warnings)
	}
	if stats.Index != "" {
		_, _ = fmt.Fprintf(r.out, "  %s %s (%s, %d dims)\n",
			r.styles.Label.Render("index:"), stats.Index, stats.Model, stats.Dimensions)
	}

	r.renderDistribution("topics", stats.Topics)
	r.renderDistribution("tasks", stats.Tasks)
	r.renderRoles(stats.MinRoles)
}

// renderRoles prints the minimum-role distribution in ascending role order.
func (r *PlainRenderer) renderRoles(roles map[int]int) {
	if len(roles) == 0 {
		return
	}

	keys := make([]int, 0, len(roles))
	for role := range roles {
		keys = append(keys, role)
	}
	sort.Ints(keys)

	_, _ = fmt.Fprintf(r.out, "  %s\n", r.styles.Label.Render("roles:"))
	for _, role := range keys {
		_, _ = fmt.Fprintf(r.out, "    %-20d %d\n", role, roles[role])
	}
}

// renderDistribution prints a name-count table sorted by count descending,
// names breaking ties.
func (r *PlainRenderer) renderDistribution(label string, dist map[string]int) {
	if len(dist) == 0 {
		return
	}

	names := make([]string, 0, len(dist))
	for name := range dist {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if dist[names[i]] != dist[names[j]] {
			return dist[names[i]] > dist[names[j]]
		}
		return names[i] < names[j]
	})

	_, _ = fmt.Fprintf(r.out, "  %s\n", r.styles.Label.Render(label+":"))
	for _, name := range names {
		_, _ = fmt.Fprintf(r.out, "    %-20s %d\n", name, dist[name])
	}
}

// ErrorCount returns how many errors were reported.
func (r *PlainRenderer) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, e := range r.errors {
		if !e.IsWarn {
			count++
		}
	}
	return count
}
