// Package viz holds the lipgloss styles of the command line output.
package viz
