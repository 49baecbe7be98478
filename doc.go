// Package dockstream is the streaming chat client for the AI Dock gateway.
//
// The package centers on [Controller], which owns one streaming session at
// a time: it opens a [Transport], decodes chunks into events, accumulates
// content deltas into the growing response, drives the connection state
// machine, and classifies failures into the closed [ErrorKind] taxonomy.
// Retry and fallback are always caller decisions; the controller only
// reports whether they are available.
package dockstream
