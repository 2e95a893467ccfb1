// Package session holds the client's process-wide state.
//
// [State] owns the chapter list and the translation map. Both are only changed through its methods and are always
// replaced wholesale, so whichever fetch finishes last wins.
//
// [IdentityManager] ensures the identity cookie exists, persisting it through a [models.IdentityRepository] and
// installing it in the HTTP client's cookie jar.
package session
