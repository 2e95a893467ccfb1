// Package tasks drives the client's operations against the translation server and reports their outcomes.
//
// # Core Operations
//
// [Controller] owns one session and exposes the operations a user can trigger:
//
//  1. [Controller.EnsureIdentity] : read or create the identity cookie
//  2. [Controller.LoadContent] : upload a file or pasted text and replace the chapter list
//  3. [Controller.LoadProgress] : fetch translated chapters and replace the translation map
//  4. [Controller.TranslateRange] : ask the server to translate a 1-based inclusive range
//  5. [Controller.ExportEpub] : build an EPUB on the server and download or open it
//  6. [Controller.ExportLocal] : write the merged chapters to a Markdown, text or CSV file
//  7. [Controller.Watch] : poll progress on an interval until the context ends
//
// # Outcomes
//
// Every operation reports through a single [Presenter] as a [Result] tagged with a [Severity]:
//
//   - [SeverityLog] : written to the logger only
//   - [SeverityInline] : shown in the status line
//   - [SeverityAlert] : shown prominently and acknowledged by the user
//
// Progress loading degrades to an inline message and never fails. Range translation and export failures are
// alerts. Upload failures are alerts and are also returned so callers can exit non-zero.
//
// # Progress Reporting
//
// Long-running steps emit [ProgressUpdate] values on an optional channel. Sends never block.
package tasks
