// Package drifttest contains helpers for testing code built on drift sequences.
package drifttest
