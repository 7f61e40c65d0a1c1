// Package rooms tracks which notification rooms the client has joined
// and keeps the server's view in sync across reconnects.
//
// Join and Leave record membership immediately. When the connection is
// up they also emit the matching join_room/leave_room frame; when it is
// down the frame is deferred and the membership is replayed wholesale
// on the next connect. Replay emits one join frame per room in the
// order the rooms were first joined.
//
//	tracker := rooms.NewTracker(conn)
//	tracker.Join("project:42")   // sent now or replayed later
//
//	// on every transition to the connected state:
//	tracker.Replay()
package rooms
