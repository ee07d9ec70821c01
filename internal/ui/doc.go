// Package ui renders command lifecycle events for people reading the terminal.
package ui
