/*
Package domain contains the core domain models of the ragchat client.

It defines the entities the streaming controller reasons about: the user's
Query, the Messages that make up a Transcript, the LogEntries of the activity
log, and the closed set of StreamEvents the backend agent pushes while it
works. This package is kept pure and free of I/O, following Hexagonal
Architecture principles.

# Key Entities

  - Message: A transcript entry authored by the user or the bot.
  - LogEntry: A short diagnostic line tagged by Severity.
  - StreamEvent: A tagged variant (NodeUpdate, System, FinalResult, Error, Unknown).
  - Outcome: The terminal result of one streaming Session.
*/
package domain
