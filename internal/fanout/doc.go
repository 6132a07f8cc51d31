// Package fanout fetches the objects of a service from every configured
// cluster at once and groups the outcome per cluster.
package fanout
