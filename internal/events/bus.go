package events

import (
	platformevents "github.com/y0shih/AlertMe-Nest/platform/events"
	"github.com/y0shih/AlertMe-Nest/platform/logger"
)

type InMemoryBus = platformevents.InMemoryBus

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
