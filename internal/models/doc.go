// Package models defines the entities exchanged with the translation server and persisted locally.
//
// The package contains two categories of types:
//
// 1. Wire types: request and response bodies of the server endpoints
//   - [Chapter] : One titled unit of source text returned by /upload
//   - [SessionStatus] : Body of /status, the server's record of finished translations
//   - [TranslateRangeRequest] / [TranslateRangeResponse] : /translate-range
//   - [ExportRequest] / [ExportResponse] : /export-epub
//
// 2. Client state
//   - [TranslationMap] : Chapter index to translated text, replaced wholesale on every status fetch
//   - [Identity] : The identity cookie, persisted for one year
//
// The Repository interfaces describe the local persistence used by the session package.
package models
