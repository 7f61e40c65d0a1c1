// Package broadcast provides type-safe one-to-many message fan-out with
// automatic subscriber cleanup.
//
// The notification manager uses it to publish state changes and
// notification events to any number of observers (UI bindings, loggers,
// tests) without the producer ever blocking on a consumer.
//
// Basic usage:
//
//	events := broadcast.NewMemoryBroadcaster[string](16)
//	defer events.Close()
//
//	ctx := context.Background()
//	sub := events.Subscribe(ctx)
//	defer sub.Close()
//
//	events.Broadcast(ctx, broadcast.Message[string]{Data: "connected"})
//
//	for msg := range sub.Receive(ctx) {
//		fmt.Println(msg.Data)
//	}
//
// Delivery is best-effort: a subscriber whose buffer is full misses the
// message and is removed. Subscriptions end when their context is
// cancelled, when Close is called on the subscriber, or when the
// broadcaster itself shuts down.
package broadcast
