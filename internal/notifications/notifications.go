// Package notifications keeps the in-memory notification list of the
// current session. Nothing here is persisted.
package notifications

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Type of a notification
type Type string

const (
	TypeAlert  Type = "alert"
	TypeUpdate Type = "update"
)

// Filter selects the notification view
type Filter string

const (
	FilterAll    Filter = "all"
	FilterUnread Filter = "unread"
	FilterAlerts Filter = "alerts"
)

var (
	// ErrNotFound is returned for an unknown notification id
	ErrNotFound = errors.New("notification not found")
	// ErrInvalidFilter is returned by ParseFilter
	ErrInvalidFilter = errors.New("invalid notification filter")
)

// Notification is one entry in the list
type Notification struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
}

// Seed returns the initial notification list
func Seed() []Notification {
	return []Notification{
		{ID: "1", Type: TypeAlert, Title: "Critical Patient Update", Message: "Patient #123's vital signs require immediate attention.", Timestamp: "2 minutes ago"},
		{ID: "2", Type: TypeUpdate, Title: "ML Model Training Complete", Message: "Sepsis prediction model has completed training with 95% accuracy.", Timestamp: "1 hour ago"},
		{ID: "3", Type: TypeAlert, Title: "System Alert", Message: "Database synchronization required for patient records.", Timestamp: "2 hours ago"},
	}
}

// ParseFilter maps a query value to a Filter; empty means FilterAll
func ParseFilter(raw string) (Filter, error) {
	switch f := Filter(strings.ToLower(raw)); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterUnread, FilterAlerts:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, raw)
	}
}

// Center guards the notification list
type Center struct {
	mu    sync.RWMutex
	items []Notification
}

// NewCenter creates a center holding the seed list
func NewCenter() *Center {
	return &Center{items: Seed()}
}

// List returns the notifications matching filter and query
func (c *Center) List(filter Filter, query string) []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Apply(c.items, filter, query)
}

// UnreadCount returns the number of unread notifications
func (c *Center) UnreadCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, item := range c.items {
		if !item.Read {
			n++
		}
	}
	return n
}

// MarkRead marks notification id as read
func (c *Center) MarkRead(id string) (Notification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Read = true
			return c.items[i], nil
		}
	}
	return Notification{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Dismiss removes notification id
func (c *Center) Dismiss(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Clear removes every notification
func (c *Center) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []Notification{}
}

// Reset restores the seed list
func (c *Center) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = Seed()
}

// Apply filters items by view, then by case-insensitive containment of
// query in title or message
func Apply(items []Notification, filter Filter, query string) []Notification {
	q := strings.ToLower(query)
	out := make([]Notification, 0, len(items))
	for _, n := range items {
		switch filter {
		case FilterUnread:
			if n.Read {
				continue
			}
		case FilterAlerts:
			if n.Type != TypeAlert {
				continue
			}
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(n.Title), q) &&
			!strings.Contains(strings.ToLower(n.Message), q) {
			continue
		}
		out = append(out, n)
	}
	return out
}
