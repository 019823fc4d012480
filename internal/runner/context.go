package runner

import "sync"

// Context carries the flags shared by every group of one run.
type Context struct {
	mu          sync.Mutex
	hasSnapshot bool
	hasErrors   bool
}

func (c *Context) setSnapshot(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasSnapshot = v
}

func (c *Context) markFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasErrors = true
}

// HasSnapshot reports whether unstaged changes were set aside for this run.
func (c *Context) HasSnapshot() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasSnapshot
}

// HasErrors reports whether any subtask has failed so far.
func (c *Context) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasErrors
}
