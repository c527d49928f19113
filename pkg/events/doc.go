/*
Package events provides an in-memory event broker for observability and CLI
streaming, independent of any heuristic's own scheduling side effects.

A Broker broadcasts EDT lifecycle transitions (created, satisfied, ready,
rescheduled, done), DB lifecycle transitions (created, acquired, released,
moved, freed), and PD roster changes (joined, left, down, scheduler-location
changed) to any number of subscribers, each an ordinary Subscriber channel
rather than a hook into pkg/scheduler. No command or package in this module
subscribes to a Broker.

Publish is non-blocking: a slow or absent subscriber never backs up a
heuristic's own notify() dispatch. Broker itself is unchanged from a plain
fan-out broadcaster — only the EventType vocabulary is specific to this
module's domain.
*/
package events
