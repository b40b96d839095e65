package publishers

import (
	"strconv"
	"time"

	"github.com/Adda-Baaj/tranco-watch/pkg/tranco"
	"github.com/Adda-Baaj/tranco-watch/pkg/watchlist"
)

// Event reports the rank of one watched domain in one Tranco list.
type Event struct {
	ListID          string    `json:"list_id"`
	ListCreatedOn   string    `json:"list_created_on,omitempty"`
	WatchID         string    `json:"watch_id"`
	Domain          string    `json:"domain"`
	Rank            uint64    `json:"rank"`
	Listed          bool      `json:"listed"`
	WithinThreshold bool      `json:"within_threshold"`
	MaxRank         uint64    `json:"max_rank,omitempty"`
	Labels          []string  `json:"labels,omitempty"`
	CollectedAt     time.Time `json:"collected_at"`
}

// NewEvent builds the event for entry in list. rank is zero when the domain
// does not appear in the list.
func NewEvent(list tranco.ListsResponse, entry watchlist.Entry, rank uint64) Event {
	return Event{
		ListID:          list.ListID,
		ListCreatedOn:   list.CreatedOn,
		WatchID:         entry.ID,
		Domain:          entry.Domain,
		Rank:            rank,
		Listed:          rank > 0,
		WithinThreshold: entry.WithinThreshold(rank),
		MaxRank:         entry.MaxRank,
		Labels:          entry.Labels,
		CollectedAt:     time.Now().UTC(),
	}
}

// Attributes returns the routing metadata attached to queue and topic messages.
func (e Event) Attributes() map[string]string {
	return map[string]string{
		"list_id":  e.ListID,
		"watch_id": e.WatchID,
		"domain":   e.Domain,
		"listed":   strconv.FormatBool(e.Listed),
	}
}
