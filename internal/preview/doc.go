// Package preview implements the visibility-gated animated preview loader:
// a visibility tracker driven by scroll notifications, a cancellable
// download controller with generation-checked completions, a data URI
// encoder, and the per-item glue that starts and cancels downloads.
package preview
