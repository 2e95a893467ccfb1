// Package services implements the HTTP client for the chapter translation server.
//
// # Backend Interface
//
// [Backend] is what the controller in the tasks package depends on; [Client] implements it over HTTP and tests substitute fakes.
//
// # Endpoints
//
//	POST /upload           multipart "file" or "text" → [{title, content}]
//	GET  /status           → {translated: {"index": text}}
//	POST /translate-range  {start, end, api_keys, prompt} → {status, translated_count}
//	POST /export-epub      {title, author, chapters} → {url}
//
// # Identity
//
// The server scopes session state by the identity cookie. [Client] owns a cookie jar (domain rules from
// golang.org/x/net/publicsuffix) and attaches stored cookies to every request, the way a browser does.
// [Client.SetCookie] installs the identity produced by the session package.
//
// # Error Handling
//
// Typed errors from the shared package:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrMalformedResponse] : body is not the expected JSON shape
//
// Raw [Client.Get] and [Client.Post] return an [APIResponse] for any status and only fail on transport errors.
// They back the debugging "api" commands.
package services
