package tracker

import (
	"context"

	"github.com/Adda-Baaj/tranco-watch/pkg/publishers"
	"github.com/Adda-Baaj/tranco-watch/pkg/tranco"
)

// ListSource streams the rows of a Tranco list.
type ListSource interface {
	OpenList(ctx context.Context, list tranco.ListsResponse) (*tranco.ListReader, error)
}

// EventPublisher publishes rank events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Recorder receives processing metrics.
type Recorder interface {
	ListHandled(outcome string, rows int)
	EventPublished(err error)
	SetRank(watchID, domain string, rank uint64)
}
