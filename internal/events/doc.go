// Package events decouples producers of domain events from the components
// that react to them.
//
// Producers build an Event with NewEvent and hand it to an EventEmitter.
// Handlers subscribe to one event type on an InMemoryEventEmitter and are
// called synchronously, in registration order, from EmitEvent.
package events
