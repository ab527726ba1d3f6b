/*
Package runner implements the interactive chat loop on top of the streaming
response controller.

It reads lines through a pluggable IOHandler, routes slash commands to the
document store, submits everything else as a query and waits for the
session's terminal outcome. Transcript and activity log changes are pushed to
the handler as they happen. An interrupt (Ctrl+C) while a query streams
cancels that query instead of leaving the loop.

# Key Components

  - Runner: The loop; owns signal handling and command routing.
  - IOHandler: Decouples presentation from the loop.
  - TextHandler: Terminal output, markdown rendered by a pluggable renderer.
  - JSONHandler: JSON-Lines output for scripts and other programs.

# Usage

	r := runner.NewRunner(client,
		runner.WithDocuments(client.Documents()),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
