// Package titan is a streaming client for the Titan chat service.
//
// The root package holds the domain: the per-request StreamSession, the
// sealed Event set decoded from the server's record stream, the Split
// function that separates reasoning from answer text, Ingest which folds a
// Stream into a session and notifies a Handler, and the Chat controller that
// keeps at most one exchange in flight. Transport and presentation live in
// subpackages.
package titan
