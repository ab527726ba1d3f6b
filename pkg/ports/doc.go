/*
Package ports defines the driven ports (interfaces) of the ragchat client.

These interfaces decouple the streaming controller from concrete transports,
the document store and coordination backends, so the same controller runs
against the SSE endpoint, the legacy request/response endpoint, or an
in-memory fake in tests.

# Key Interfaces

  - StreamDialer: Opens one push channel for a query, registering handlers atomically.
  - Channel: The handle owned by a Session; closing it ends the exchange.
  - DocumentStore: Upload, list and clear the backend document corpus.
  - DistributedLocker: Guards the "one active query" rule across processes.
*/
package ports
