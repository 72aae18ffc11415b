// Package server exposes the store and detail views over HTTP.
//
// Routes:
//   - GET    /health              liveness plus provider reachability
//   - GET    /api/coins           filtered, sorted, paginated coin list
//   - POST   /api/refresh         manual refresh (coalesced with the poller)
//   - GET    /api/coins/{id}      coin detail and history
//   - GET    /api/favorites       favorited coins
//   - PUT    /api/favorites/{id}  mark a favorite
//   - DELETE /api/favorites/{id}  unmark a favorite
//   - GET    /ws                  websocket push of every successful refresh
package server
