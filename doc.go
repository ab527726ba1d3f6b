/*
Package ragchat is a client for a document-aware conversational assistant.

It sends a query to the backend agent, follows the server-pushed event stream
describing the agent's progress, and leaves a transcript in a terminal,
human-readable state no matter how the stream ends: with an answer, a backend
error, a dropped connection, a malformed payload, an idle timeout, or a user
cancellation. Answers are rendered from markdown to sanitized HTML.

It also manages the backend's document corpus (upload, list, clear).

# Architecture

The streaming response controller (pkg/controller) owns one query at a time
and talks to the backend through ports (pkg/ports). Adapters provide the
transports:

  - pkg/adapters/sse: the event stream, GET /api/agent/stream.
  - pkg/adapters/legacy: the one-shot POST /api/agent, presented as a stream.
  - pkg/adapters/docstore: the document corpus routes.
  - pkg/adapters/redis and pkg/adapters/memory: the "one active query" lock.

# Usage

	client, err := ragchat.New("http://localhost:8000")
	if err != nil {
		log.Fatal(err)
	}

	answer, outcome, err := client.Ask(ctx, "What is X?")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(outcome.Kind, answer.Content)

Observers subscribe to the transcript and activity log to render changes as
they happen:

	client.Transcript().Subscribe(func(c transcript.Change) { ... })
	client.ActivityLog().Subscribe(func(e domain.LogEntry) { ... })
*/
package ragchat
