package db

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

func newCompanies() companies {
	return companies{known: make(map[string]struct{})}
}

// companies remembers companies already stored in this run.
type companies struct {
	known map[string]struct{}
	group singleflight.Group
	mu    sync.RWMutex
}

func (self *companies) Len() int {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return len(self.known)
}

func (self *companies) Known(code string) bool {
	self.mu.RLock()
	defer self.mu.RUnlock()
	_, ok := self.known[code]
	return ok
}

// Add calls addCompany once per code. Concurrent callers of the same code
// wait for the first one. A failed add isn't remembered.
func (self *companies) Add(code string, addCompany func() error) error {
	if self.Known(code) {
		return nil
	}

	_, err, _ := self.group.Do(code, func() (any, error) {
		if self.Known(code) {
			return nil, nil
		}
		if err := addCompany(); err != nil {
			return nil, err
		}
		self.mu.Lock()
		defer self.mu.Unlock()
		self.known[code] = struct{}{}
		return nil, nil
	})
	return err //nolint:wrapcheck // wrapped inside addCompany
}
