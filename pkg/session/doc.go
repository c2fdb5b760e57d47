/*
Package session coordinates consoles that share one device.

The Manager serializes mutating device calls per device ID with reference-counted local
locks and, optionally, a ports.DistributedLocker so several processes can share a device
whose state lives in Redis. It also tracks attached consoles for the ops endpoints.
*/
package session
