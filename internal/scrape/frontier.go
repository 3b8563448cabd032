package scrape

// Frontier holds the pending-work queue, the visited set, and the
// first-seen original-address index for one crawl run. The crawl loop is
// single-threaded, so the Frontier is deliberately unsynchronized.
type Frontier struct {
	queue    []FrontierEntry
	visited  map[string]struct{}
	original map[string]string
}

// NewFrontier seeds a frontier with the start address at depth 0.
func NewFrontier(seed string) *Frontier {
	f := &Frontier{
		visited:  make(map[string]struct{}),
		original: make(map[string]string),
	}
	f.Push(FrontierEntry{URL: seed, Depth: 0})
	f.original[Normalize(seed)] = seed
	return f
}

// Push appends an entry to the tail of the queue.
func (f *Frontier) Push(entry FrontierEntry) {
	f.queue = append(f.queue, entry)
}

// Pop removes and returns the head entry. The second return is false when the
// queue is empty.
func (f *Frontier) Pop() (FrontierEntry, bool) {
	if len(f.queue) == 0 {
		return FrontierEntry{}, false
	}
	head := f.queue[0]
	f.queue = f.queue[1:]
	return head, true
}

// IsVisited reports whether the normalized address was already claimed.
func (f *Frontier) IsVisited(normalizedURL string) bool {
	_, ok := f.visited[normalizedURL]
	return ok
}

// MarkVisited claims a normalized address and records its original form.
// The original-address index keeps the first form seen; later sightings do
// not overwrite it.
func (f *Frontier) MarkVisited(normalizedURL, originalURL string) {
	f.visited[normalizedURL] = struct{}{}
	if _, ok := f.original[normalizedURL]; !ok {
		f.original[normalizedURL] = originalURL
	}
}

// Original returns the first-seen original form for a normalized address,
// falling back to the normalized form itself.
func (f *Frontier) Original(normalizedURL string) string {
	if orig, ok := f.original[normalizedURL]; ok {
		return orig
	}
	return normalizedURL
}

// Visited returns the normalized addresses claimed so far, in no particular
// order.
func (f *Frontier) Visited() []string {
	out := make([]string, 0, len(f.visited))
	for u := range f.visited {
		out = append(out, u)
	}
	return out
}

// Len reports the number of pending entries.
func (f *Frontier) Len() int {
	return len(f.queue)
}
