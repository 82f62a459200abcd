// Package redis stores dashboard session state in Redis so several server
// instances can share it. Keys expire after the session max age; nothing is
// kept beyond that.
package redis
