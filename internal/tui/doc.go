// Package tui hosts the tip calculator in a terminal. Text edits are held
// back by a debouncer; preset, people-stepper and reset keys act at once.
package tui
